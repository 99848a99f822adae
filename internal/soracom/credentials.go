package soracom

// Credentials is either AuthKey or UserPassword.
type Credentials interface {
	authBody() map[string]string
}

// AuthKey is an API key pair (authKeyId / authKey).
type AuthKey struct {
	ID     string
	Secret string
}

func (c AuthKey) authBody() map[string]string {
	return map[string]string{"authKeyId": c.ID, "authKey": c.Secret}
}

// UserPassword logs in as a SAM user of OperatorID, or as the root
// account (UserName is the email) when OperatorID is empty.
type UserPassword struct {
	OperatorID string
	UserName   string
	Password   string
}

func (c UserPassword) authBody() map[string]string {
	if c.OperatorID == "" {
		return map[string]string{"email": c.UserName, "password": c.Password}
	}
	return map[string]string{"operatorId": c.OperatorID, "userName": c.UserName, "password": c.Password}
}

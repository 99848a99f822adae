package modem

import "context"

// Identity holds what the modem reports about itself. A field is empty
// when its query failed.
type Identity struct {
	Manufacturer string
	Model        string
	Revision     string
	SerialNumber string
	IMSI         string
}

// Identity runs the five identity queries. Only transport faults are
// returned as errors.
func (m *Modem) Identity(ctx context.Context) (Identity, error) {
	var id Identity
	queries := []struct {
		dst *string
		fn  func(context.Context) (string, bool, error)
	}{
		{&id.Manufacturer, m.Manufacturer},
		{&id.Model, m.Model},
		{&id.Revision, m.Revision},
		{&id.SerialNumber, m.SerialNumber},
		{&id.IMSI, m.IMSI},
	}
	for _, q := range queries {
		v, ok, err := q.fn(ctx)
		if err != nil {
			return id, err
		}
		if ok {
			*q.dst = v
		}
	}
	return id, nil
}

package at

import (
	"fmt"
	"strings"
)

// Command literals sent to the modem. They are kept exactly as the
// benchmark has always sent them, spacing included, for device
// compatibility. CRLF is appended by the codec.
const (
	CmdAt              = "AT"
	CmdEchoOff         = "ATE0"
	CmdIMSI            = "AT+CIMI"
	CmdManufacturer    = "AT+CGMI"
	CmdModel           = "AT+CGMM"
	CmdRevision        = "AT+CGMR"
	CmdSerialNumber    = "AT+CGSN"
	CmdRegistration    = "AT+CREG?"
	CmdOperator        = "AT+COPS?"
	CmdSignalQuality   = "AT+CSQ"
	CmdContextStatus   = "AT+CGACT?"
	CmdActivateContext = "AT+CGACT=1,1"
	CmdFactoryReset    = "AT&F"
)

// Functionality returns AT+CFUN with the mode and reset flag.
func Functionality(mode, reset int) string {
	return fmt.Sprintf("AT+CFUN=%d, %d", mode, reset)
}

// DefineContext returns the CGDCONT definition of context 1 for apn.
func DefineContext(apn string) string {
	return fmt.Sprintf(`AT+CGDCONT=1,"IP","%s"`, apn)
}

// AutoRegistration requests automatic PLMN selection with act as the
// preferred access technology (27.007 <AcT> value).
func AutoRegistration(act int) string {
	return fmt.Sprintf("AT+COPS=0,,,%d", act)
}

// SIM elementary-file erase commands (CRSM UPDATE BINARY, P1=P2=0).
const (
	CmdClearPSLOCI = `AT+CRSM=214,28531,0 ,0,14,"FFFFFFFFFFFFFF92F5010000FF01"`
	CmdClearLOCI   = `AT+CRSM=214,28542,0,0,11,"FFFFFFFF92F5010000FF01"`
	CmdClearFPLMN  = `AT+CRSM=214,28539,0,0,30,"FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF"`
	CmdClearKeys   = `AT+CRSM=214,28424,0,0,33,"07FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF"`
	CmdClearKeysPS = `AT+CRSM=214,28425,0,0,33,"07FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF"`
)

// CmdClearNetPar erases EF_NetPar (255 bytes of 0xFF).
var CmdClearNetPar = fmt.Sprintf(`AT+CRSM=214,28612,0,0,255,"%s"`, strings.Repeat("FF", 255))

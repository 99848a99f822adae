// Package report renders a benchmark result for the console.
package report

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/soracom/connectivity-benchmark/internal/benchmark"
	"github.com/soracom/connectivity-benchmark/internal/mccmnc"
)

const timeLayout = "2006-01-02 15:04:05.000000"

// FormatOperator extracts the operator from a "+COPS: <mode>,<format>,
// "<oper>",<AcT>" payload. Numeric PLMNs are resolved through mccmnc when
// the table knows them.
func FormatOperator(raw string) string {
	// +COPS: 0,0,"Chunghwa Telecom",7
	parts := strings.Split(raw, "\"")
	if len(parts) < 3 {
		return ""
	}
	op := parts[1]
	if isNumeric(op) {
		if known, ok := mccmnc.Lookup(op); ok && known.Name != "" {
			return fmt.Sprintf("%s (%s)", known.Name, op)
		}
	}
	return op
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// ParseSignal reads the <rssi> of a "+CSQ: <rssi>,<ber>" payload. ok is
// false for 99 (not detectable) or a malformed payload.
func ParseSignal(raw string) (rssi int, ok bool) {
	_, rest, found := strings.Cut(raw, ":")
	if !found {
		return 0, false
	}
	field, _, _ := strings.Cut(rest, ",")
	rssi, err := strconv.Atoi(strings.TrimSpace(field))
	if err != nil || rssi < 0 || rssi > 31 {
		return 0, false
	}
	return rssi, true
}

// FormatSignal renders CSQ as dBm with the 0-31 scale as a percentage.
func FormatSignal(raw string) string {
	rssi, ok := ParseSignal(raw)
	if !ok {
		return "unknown"
	}
	dbm := -113 + 2*rssi
	percent := int(float64(rssi) / 31.0 * 100.0)
	return fmt.Sprintf("%d dBm (%d%%)", dbm, percent)
}

func formatTime(ts benchmark.Timestamps, m benchmark.Mark) string {
	t, ok := ts.Get(m)
	if !ok {
		return "-"
	}
	return t.Format(timeLayout)
}

func formatLatency(d time.Duration, ok bool) string {
	if !ok {
		return "-"
	}
	return d.Round(time.Millisecond).String()
}

// Console writes the statistics block the benchmark has always printed,
// followed by the modem and network details.
type Console struct {
	w io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Print(res *benchmark.Result, runErr error) {
	reg, regOK := res.RegistrationLatency()
	onl, onlOK := res.OnlineLatency()

	fmt.Fprintln(c.w, "# -----------------BENCHMARK STATISTICS-----------------")
	fmt.Fprintf(c.w, "SIM ICCID %s IMSI %s\n", res.ICCID, res.IMSI)
	fmt.Fprintf(c.w, "Status                        : %s\n", res.SubscriberStatus)
	fmt.Fprintf(c.w, "Online                        : %t\n", res.Online)
	fmt.Fprintf(c.w, "Start time (after cache clear): %s\n", formatTime(res.Timestamps, benchmark.MarkCacheClearStart))
	fmt.Fprintf(c.w, "Network registered time       : %s\n", formatTime(res.Timestamps, benchmark.MarkNetworkRegistered))
	fmt.Fprintf(c.w, "PDP context activated time    : %s\n", formatTime(res.Timestamps, benchmark.MarkContextActivated))
	fmt.Fprintf(c.w, "Console Online time           : %s\n", formatTime(res.Timestamps, benchmark.MarkSessionOnline))
	fmt.Fprintf(c.w, "Time taken to register network: %s\n", formatLatency(reg, regOK))
	fmt.Fprintf(c.w, "Time taken to come online     : %s\n", formatLatency(onl, onlOK))
	fmt.Fprintln(c.w, "# ------------------------------------------------------")

	id := res.Identity
	fmt.Fprintf(c.w, "Modem                         : %s %s (%s)\n", id.Manufacturer, id.Model, id.Revision)
	fmt.Fprintf(c.w, "Access technology             : %s\n", res.AccessTechnology)
	if res.Ticks > 0 {
		fmt.Fprintf(c.w, "Registration                  : %s after %d ticks, %d recoveries\n", res.Registration, res.Ticks, len(res.Recoveries))
	}
	if res.NetworkRaw != "" {
		fmt.Fprintf(c.w, "Network                       : %s\n", FormatOperator(res.NetworkRaw))
	}
	if res.SignalRaw != "" {
		fmt.Fprintf(c.w, "Signal                        : %s\n", FormatSignal(res.SignalRaw))
	}
	fmt.Fprintf(c.w, "Result                        : %s\n", res.FinalState)

	if runErr != nil {
		var stepErr *benchmark.StepError
		if errors.As(runErr, &stepErr) {
			fmt.Fprintf(c.w, "Failed step                   : %s\n", stepErr.Step)
		}
		fmt.Fprintf(c.w, "Error                         : %v\n", runErr)
	}
}

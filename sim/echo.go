package sim

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// dateField carries the calendar date of an echoed entry.
const dateField = "date"

// echoFormatter renders entries as "<date>:\t<message>\n", the plain
// per-event trace format. It is not a structured log.
type echoFormatter struct{}

func (echoFormatter) Format(e *logrus.Entry) ([]byte, error) {
	return []byte(fmt.Sprintf("%v:\t%s\n", e.Data[dateField], e.Message)), nil
}

// newEchoLogger returns a dedicated logger for the event echo, independent
// of the global logrus level used for diagnostics.
func newEchoLogger(out io.Writer) *logrus.Logger {
	if out == nil {
		out = os.Stdout
	}
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(echoFormatter{})
	l.SetLevel(logrus.InfoLevel)
	return l
}

package applog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// LineFormatter formats logrus entries as applog lines. Fields are appended
// to the message as key=value pairs in key order.
type LineFormatter struct{}

// Format implements logrus.Formatter.
func (LineFormatter) Format(e *logrus.Entry) ([]byte, error) {
	return []byte(FormatLine(e.Time, entryMessage(e))), nil
}

// Hook returns a logrus hook that mirrors entries at Info level and above
// into l. Entries fired after Close are ignored.
func (l *Logger) Hook() logrus.Hook {
	return &hook{logger: l}
}

type hook struct {
	logger *Logger
}

func (h *hook) Levels() []logrus.Level {
	return []logrus.Level{
		logrus.PanicLevel,
		logrus.FatalLevel,
		logrus.ErrorLevel,
		logrus.WarnLevel,
		logrus.InfoLevel,
	}
}

func (h *hook) Fire(e *logrus.Entry) error {
	err := h.logger.write(e.Time, entryMessage(e))
	if errors.Is(err, ErrClosed) {
		return nil
	}
	return err
}

func entryMessage(e *logrus.Entry) string {
	if len(e.Data) == 0 {
		return e.Message
	}

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(e.Message)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Data[k])
	}
	return b.String()
}

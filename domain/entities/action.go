package entities

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ActionType tags the interaction a screenshot was captured for
type ActionType string

const (
	ActionClick       ActionType = "click"
	ActionDoubleClick ActionType = "dblclick"
	ActionTypeText    ActionType = "type"
	ActionSelect      ActionType = "select"
	ActionError       ActionType = "error"
)

var unsafeLabelChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// ScreenshotLabel builds "<action>[-<detail>]-<unix millis>". The millisecond
// suffix keeps labels unique without coordination between callers.
func ScreenshotLabel(action ActionType, detail string, at time.Time) string {
	detail = strings.Trim(unsafeLabelChars.ReplaceAllString(detail, "_"), "_")
	if detail == "" {
		return fmt.Sprintf("%s-%d", action, at.UnixMilli())
	}
	return fmt.Sprintf("%s-%s-%d", action, detail, at.UnixMilli())
}

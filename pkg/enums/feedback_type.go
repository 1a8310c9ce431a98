package enums

import "fmt"

// FeedbackType distinguishes a rating from a problem report.
type FeedbackType string

const (
	FeedbackTypeFeedback FeedbackType = "feedback"
	FeedbackTypeReport   FeedbackType = "report"
)

func (f FeedbackType) IsValid() bool {
	return f == FeedbackTypeFeedback || f == FeedbackTypeReport
}

func ParseFeedbackType(value string) (FeedbackType, error) {
	switch FeedbackType(value) {
	case FeedbackTypeFeedback, FeedbackTypeReport:
		return FeedbackType(value), nil
	}
	return "", fmt.Errorf("invalid feedback type %q", value)
}

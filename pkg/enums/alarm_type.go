package enums

import "fmt"

// AlarmType maps to the alarm_type enum in Postgres.
type AlarmType string

const (
	AlarmTypeNewCommentOnPost AlarmType = "new_comment_on_post"
	AlarmTypeNewLikeOnPost    AlarmType = "new_like_on_post"
)

var validAlarmTypes = []AlarmType{
	AlarmTypeNewCommentOnPost,
	AlarmTypeNewLikeOnPost,
}

// Text returns the human-readable message rendered to clients for this type.
func (a AlarmType) Text() string {
	switch a {
	case AlarmTypeNewCommentOnPost:
		return "new comment!"
	case AlarmTypeNewLikeOnPost:
		return "new like!"
	}
	return ""
}

// IsValid checks whether the given type matches the canonical enum.
func (a AlarmType) IsValid() bool {
	for _, candidate := range validAlarmTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAlarmType converts raw strings into AlarmType.
func ParseAlarmType(value string) (AlarmType, error) {
	for _, candidate := range validAlarmTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid alarm type %q", value)
}

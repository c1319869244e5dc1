package domain

import "fmt"

type UserTag struct {
	Username string  `json:"username"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

type ProductTag struct {
	ProductID string  `json:"product_id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

// PublishOptions is the optional metadata sent with the media container.
// Empty fields fall back to the configured defaults.
type PublishOptions struct {
	AltText     string
	LocationID  string
	UserTags    []UserTag
	ProductTags []ProductTag
}

type PublishPhase string

const (
	PhaseCreateContainer  PublishPhase = "create_container"
	PhaseContainerStatus  PublishPhase = "container_status"
	PhasePublishContainer PublishPhase = "publish_container"
)

// PublishError is a failure reported by the publishing service itself.
// Transport faults are not PublishErrors.
type PublishError struct {
	Phase   PublishPhase
	Status  int
	Code    int
	Type    string
	Message string
}

func (e *PublishError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s failed (status %d, code %d): %s", e.Phase, e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("%s failed (status %d): %s", e.Phase, e.Status, e.Message)
}

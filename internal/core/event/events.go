package event

// Event names emitted by a world. Collaborators subscribe to the subset they
// need; the sync broadcaster, for example, listens on PostUpdate to decide
// when to flush.
const (
	EntityAdded        = "entityAdded"
	EntityRemoved      = "entityRemoved"
	SystemRegistered   = "systemRegistered"
	SystemUnregistered = "systemUnregistered"
	WorldStarted       = "worldStarted"
	WorldStopped       = "worldStopped"
	PreUpdate          = "preUpdate"
	PostUpdate         = "postUpdate"
)

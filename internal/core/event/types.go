package event

// Events emitted by the pool itself.
const (
	Init            = "init"            // args: constructor args
	Add             = "add"             // args: entity
	Remove          = "remove"          // args: entity
	AddToGroup      = "addToGroup"      // args: group name, entity
	RemoveFromGroup = "removeFromGroup" // args: group name, entity
)

// Reserved definition hooks that are driven by membership changes.
const (
	Added   = "added"
	Removed = "removed"
)

// Conventional tick events emitted by the host loop.
const (
	Update = "update"
	Draw   = "draw"
)

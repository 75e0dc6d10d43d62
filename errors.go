package pacs

import "errors"

// Configuration errors. They are returned before any state is touched.
var (
	ErrInvalidConfig     = errors.New("invalid move container configuration")
	ErrInvalidPrimitive  = errors.New("invalid primitive description")
	ErrDegenerateShape   = errors.New("degenerate primitive shape")
	ErrPrimitiveTooLarge = errors.New("primitive larger than the container maximum size")
	ErrUnknownPrimitive  = errors.New("unknown primitive")
	ErrSlotOutOfRange    = errors.New("world image slot out of range")
	ErrSlotNotEligible   = errors.New("primitive not eligible for world image slot")
	ErrNotInserted       = errors.New("primitive not inserted in world image slot")
	ErrAlreadyInserted   = errors.New("primitive already inserted in world image slot")
	ErrNonCollisionable  = errors.New("operation not supported on non collisionable primitive")
	ErrCollisionable     = errors.New("operation only supported on non collisionable primitive")
	ErrInvalidDeltaTime  = errors.New("invalid evaluation delta time")
)

// Primitive block errors.
var (
	ErrBadBlock = errors.New("malformed primitive block")
	ErrChecksum = errors.New("primitive block checksum mismatch")
)

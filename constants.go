package edgert

import "github.com/edgert-io/edgert/internal/constants"

// Re-exported constants for the public API.
const (
	ChannelMsgType    = constants.ChannelMsgType
	ReplyOK           = constants.ReplyOK
	MaxPayloadSize    = constants.MaxPayloadSize
	DefaultQueueDepth = constants.DefaultQueueDepth
	MinPriority       = constants.MinPriority
	MaxPriority       = constants.MaxPriority
)

package nodecloud

import "errors"

// ErrUnknownNode is returned when an id does not resolve in the current graph
var ErrUnknownNode = errors.New("nodecloud: unknown node")

package channel

import (
	"encoding/binary"

	"github.com/edgert-io/edgert/internal/constants"
)

// header is the leading {type, size} pair every message on the wire
// carries, in host byte order. Keeping marshal/unmarshal in one place
// means callers never touch the type/size fields directly — Send always
// stamps type itself, Receive always validates it.
type header struct {
	Type uint32
	Size uint32
}

const headerSize = constants.HeaderSize

func marshalHeader(h header, payload []byte) []byte {
	buf := make([]byte, headerSize+len(payload))
	binary.NativeEndian.PutUint32(buf[0:4], h.Type)
	binary.NativeEndian.PutUint32(buf[4:8], h.Size)
	copy(buf[headerSize:], payload)
	return buf
}

func unmarshalHeader(buf []byte) (header, []byte, bool) {
	if len(buf) < headerSize {
		return header{}, nil, false
	}
	h := header{
		Type: binary.NativeEndian.Uint32(buf[0:4]),
		Size: binary.NativeEndian.Uint32(buf[4:8]),
	}
	return h, buf[headerSize:], true
}

package contextBuffer

import (
	"encoding/binary"

	"github.com/Layr-Labs/txcontext/pkg/transition"
	"github.com/pkg/errors"
)

// OutputRegionSize is the number of bytes ReserializeOutputs writes for outputs.
func OutputRegionSize(outputs []*transition.OutputAccount) int {
	size := 4
	for _, out := range outputs {
		size += transition.OutputRecordSize(out)
	}
	return size
}

// ReserializeOutputs writes a u32 count followed by every output record into
// dst and returns the number of bytes written. Nothing is written when the
// records do not fit.
func ReserializeOutputs(outputs []*transition.OutputAccount, dst []byte) (int, error) {
	need := OutputRegionSize(outputs)
	if need > len(dst) {
		return 0, errors.Wrapf(ErrSerialization, "need %d bytes, region holds %d", need, len(dst))
	}

	binary.LittleEndian.PutUint32(dst, uint32(len(outputs)))
	offset := 4
	for _, out := range outputs {
		offset += transition.PutOutputRecord(dst[offset:], out)
	}
	return offset, nil
}

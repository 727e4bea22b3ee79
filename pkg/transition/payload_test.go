package transition

import (
	"testing"

	"github.com/Layr-Labs/txcontext/pkg/types"
	"github.com/stretchr/testify/assert"
)

func testOutput(value uint64, slot uint8) *OutputAccount {
	addr := types.NewUniquePubkey()
	return &OutputAccount{
		Owner:    types.NewUniquePubkey(),
		Value:    value,
		Address:  &addr,
		TreeSlot: slot,
		Content: &Content{
			Discriminator: [8]byte{1, 2, 3, 4, 5, 6, 7, 8},
			Hash:          types.Keccak256([]byte("content")),
			Data:          []byte("some data"),
		},
	}
}

func testInput(value uint64, slot uint8) *InputAccount {
	return &InputAccount{
		Owner: types.NewUniquePubkey(),
		Value: value,
		MerkleContext: MerkleContext{
			TreeSlot:  slot,
			QueueSlot: slot + 1,
			LeafIndex: uint32(value),
		},
		RootIndex: 3,
	}
}

func Test_Payload(t *testing.T) {
	t.Run("Should report an empty payload", func(t *testing.T) {
		var nilPayload *Payload
		assert.True(t, nilPayload.IsEmpty())
		assert.True(t, NewPayload().IsEmpty())

		p := NewPayload()
		p.Proof = &CompressedProof{}
		assert.True(t, p.IsEmpty())

		p.ReadOnlyAddresses = append(p.ReadOnlyAddresses, &ReadOnlyAddress{})
		assert.False(t, p.IsEmpty())
	})
	t.Run("Should strip extras when taking entries", func(t *testing.T) {
		fee := uint64(10)
		p := NewPayload()
		p.Inputs = append(p.Inputs, testInput(1, 0))
		p.Proof = &CompressedProof{}
		p.RelayFee = &fee
		p.Descriptor = &Descriptor{StillAccumulating: true}

		entries := p.Entries()
		assert.Equal(t, p.Inputs, entries.Inputs)
		assert.Nil(t, entries.Proof)
		assert.Nil(t, entries.RelayFee)
		assert.Nil(t, entries.Descriptor)
	})
	t.Run("Should place stored entries before the caller's own when combining", func(t *testing.T) {
		stored := NewPayload()
		stored.Inputs = append(stored.Inputs, testInput(1, 0))
		stored.Outputs = append(stored.Outputs, testOutput(1, 0))

		own := NewPayload()
		own.Inputs = append(own.Inputs, testInput(2, 0))
		own.Outputs = append(own.Outputs, testOutput(2, 0))
		own.Proof = &CompressedProof{A: [32]byte{9}}

		merged, err := own.Combine(stored)
		assert.Nil(t, err)
		assert.Len(t, merged.Inputs, 2)
		assert.Len(t, merged.Outputs, 2)
		assert.Equal(t, stored.Inputs[0], merged.Inputs[0])
		assert.Equal(t, own.Inputs[0], merged.Inputs[1])
		assert.Equal(t, stored.Outputs[0], merged.Outputs[0])
		assert.Equal(t, own.Outputs[0], merged.Outputs[1])
		assert.Equal(t, own.Proof, merged.Proof)
	})
	t.Run("Should not alias the source payloads", func(t *testing.T) {
		stored := NewPayload()
		stored.Outputs = append(stored.Outputs, testOutput(1, 0))

		merged, err := NewPayload().Combine(stored)
		assert.Nil(t, err)
		merged.Outputs[0].Value = 99
		merged.Outputs[0].Content.Data[0] = 'x'

		assert.Equal(t, uint64(1), stored.Outputs[0].Value)
		assert.Equal(t, byte('s'), stored.Outputs[0].Content.Data[0])
	})
	t.Run("Should shift assigned output indexes when appending", func(t *testing.T) {
		stored := NewPayload()
		stored.Outputs = append(stored.Outputs, testOutput(1, 0), testOutput(2, 0))

		idx := uint8(0)
		own := NewPayload()
		own.Outputs = append(own.Outputs, testOutput(3, 0))
		own.NewAddresses = append(own.NewAddresses, &NewAddressParams{AssignedOutputIndex: &idx})

		merged, err := own.Combine(stored)
		assert.Nil(t, err)
		assert.Equal(t, uint8(2), *merged.NewAddresses[0].AssignedOutputIndex)
		assert.Equal(t, uint8(0), *own.NewAddresses[0].AssignedOutputIndex)
		assert.Equal(t, own.Outputs[0], merged.Outputs[*merged.NewAddresses[0].AssignedOutputIndex])
	})
	t.Run("Should fail when a shifted assigned output index exceeds a uint8", func(t *testing.T) {
		stored := NewPayload()
		for i := 0; i < 250; i++ {
			stored.Outputs = append(stored.Outputs, &OutputAccount{Owner: types.NewUniquePubkey(), Value: uint64(i)})
		}

		idx := uint8(10)
		own := NewPayload()
		own.Outputs = append(own.Outputs, testOutput(1, 0))
		own.NewAddresses = append(own.NewAddresses, &NewAddressParams{AssignedOutputIndex: &idx})

		merged, err := own.Combine(stored)
		assert.ErrorIs(t, err, ErrOutputIndexOverflow)
		assert.Nil(t, merged)

		err = stored.Append(own)
		assert.ErrorIs(t, err, ErrOutputIndexOverflow)
		assert.Len(t, stored.Outputs, 250)
		assert.Empty(t, stored.NewAddresses)
	})
	t.Run("Should accept the highest assigned output index that fits", func(t *testing.T) {
		stored := NewPayload()
		for i := 0; i < 250; i++ {
			stored.Outputs = append(stored.Outputs, &OutputAccount{Owner: types.NewUniquePubkey(), Value: uint64(i)})
		}

		idx := uint8(5)
		own := NewPayload()
		own.NewAddresses = append(own.NewAddresses, &NewAddressParams{AssignedOutputIndex: &idx})

		merged, err := own.Combine(stored)
		assert.Nil(t, err)
		assert.Equal(t, uint8(255), *merged.NewAddresses[0].AssignedOutputIndex)
	})
}

func Test_Codec(t *testing.T) {
	t.Run("Should compute the exact record size", func(t *testing.T) {
		out := testOutput(1, 2)
		assert.Equal(t, 1+32+32+8+1+1+8+32+4+len("some data"), OutputRecordSize(out))

		bare := &OutputAccount{Owner: types.NewUniquePubkey(), Value: 7}
		assert.Equal(t, 1+32+8+1+1, OutputRecordSize(bare))

		buf := make([]byte, OutputRecordSize(out))
		assert.Equal(t, len(buf), PutOutputRecord(buf, out))
	})
	t.Run("Should write fields little endian in layout order", func(t *testing.T) {
		out := &OutputAccount{Owner: types.Pubkey{0xAA}, Value: 0x0102, TreeSlot: 4}
		buf := make([]byte, OutputRecordSize(out))
		PutOutputRecord(buf, out)

		assert.Equal(t, byte(0), buf[0])
		assert.Equal(t, byte(0xAA), buf[1])
		assert.Equal(t, []byte{0x02, 0x01, 0, 0, 0, 0, 0, 0}, buf[33:41])
		assert.Equal(t, byte(4), buf[41])
		assert.Equal(t, byte(0), buf[42])
	})
	t.Run("Should read back a written record", func(t *testing.T) {
		out := testOutput(42, 1)
		buf := make([]byte, OutputRecordSize(out))
		PutOutputRecord(buf, out)

		decoded, n, err := ReadOutputRecord(buf)
		assert.Nil(t, err)
		assert.Equal(t, len(buf), n)
		assert.Equal(t, out, decoded)
	})
	t.Run("Should decode encoded entries", func(t *testing.T) {
		idx := uint8(1)
		p := NewPayload()
		p.Inputs = append(p.Inputs, testInput(5, 1))
		p.Outputs = append(p.Outputs, testOutput(6, 0), &OutputAccount{Owner: types.NewUniquePubkey(), Value: 1})
		p.NewAddresses = append(p.NewAddresses, &NewAddressParams{Seed: [32]byte{1}, AddressTreeSlot: 2, AssignedOutputIndex: &idx})
		p.ReadOnlyAddresses = append(p.ReadOnlyAddresses, &ReadOnlyAddress{Address: types.NewUniquePubkey(), AddressTreeRootIndex: 9})
		p.ReadOnlyAccounts = append(p.ReadOnlyAccounts, &ReadOnlyAccount{AccountHash: types.Keccak256([]byte("ro")), RootIndex: 4})

		decoded, err := DecodeEntries(EncodeEntries(p))
		assert.Nil(t, err)
		assert.Equal(t, p, decoded)
	})
	t.Run("Should decode nothing into an empty payload", func(t *testing.T) {
		decoded, err := DecodeEntries(nil)
		assert.Nil(t, err)
		assert.True(t, decoded.IsEmpty())

		decoded, err = DecodeEntries(EncodeEntries(NewPayload()))
		assert.Nil(t, err)
		assert.True(t, decoded.IsEmpty())
	})
	t.Run("Should fail on truncated input", func(t *testing.T) {
		p := NewPayload()
		p.Outputs = append(p.Outputs, testOutput(6, 0))
		encoded := EncodeEntries(p)

		_, err := DecodeEntries(encoded[:len(encoded)-20])
		assert.ErrorIs(t, err, ErrTruncated)
	})
	t.Run("Should fail on trailing bytes", func(t *testing.T) {
		encoded := append(EncodeEntries(NewPayload()), 0)

		_, err := DecodeEntries(encoded)
		assert.ErrorIs(t, err, ErrTrailingBytes)
	})
}

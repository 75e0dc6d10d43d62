package pacs

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	primitiveBlockMagic   = "PACSPRIM"
	primitiveBlockVersion = 1
	primitiveBlockHeader  = len(primitiveBlockMagic) + 4 + 8
)

// PrimitiveBlockDesc is a primitive and its placement in the block frame.
type PrimitiveBlockDesc struct {
	PrimitiveDesc `yaml:",inline" msgpack:",inline"`

	Position    mgl64.Vec3 `yaml:"position,flow" msgpack:"position"`
	Orientation float64    `yaml:"orientation" msgpack:"orientation"`
}

// PrimitiveBlock is a set of authored primitives loaded together.
type PrimitiveBlock struct {
	Primitives []PrimitiveBlockDesc `yaml:"primitives" msgpack:"primitives"`
}

// Validate checks every primitive against maxSize.
func (b *PrimitiveBlock) Validate(maxSize float64) error {
	for i := range b.Primitives {
		if err := b.Primitives[i].validate(maxSize); err != nil {
			return fmt.Errorf("primitive %d: %w", i, err)
		}
	}
	return nil
}

// WritePrimitiveBlock writes the binary form: magic, version, xxhash64 of the
// payload, then the msgpack payload. Integers are little endian.
func WritePrimitiveBlock(w io.Writer, b *PrimitiveBlock) error {
	payload, err := msgpack.Marshal(b)
	if err != nil {
		return err
	}
	header := make([]byte, primitiveBlockHeader)
	copy(header, primitiveBlockMagic)
	binary.LittleEndian.PutUint32(header[8:], primitiveBlockVersion)
	binary.LittleEndian.PutUint64(header[12:], xxhash.Sum64(payload))
	if _, err := w.Write(header); err != nil {
		return err
	}
	_, err = w.Write(payload)
	return err
}

func ReadPrimitiveBlock(r io.Reader) (*PrimitiveBlock, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(data) < primitiveBlockHeader || !bytes.Equal(data[:8], []byte(primitiveBlockMagic)) {
		return nil, fmt.Errorf("%w: bad header", ErrBadBlock)
	}
	if v := binary.LittleEndian.Uint32(data[8:]); v != primitiveBlockVersion {
		return nil, fmt.Errorf("%w: version %d", ErrBadBlock, v)
	}
	payload := data[primitiveBlockHeader:]
	if sum := binary.LittleEndian.Uint64(data[12:]); sum != xxhash.Sum64(payload) {
		return nil, fmt.Errorf("%w: %016x", ErrChecksum, sum)
	}
	b := &PrimitiveBlock{}
	if err := msgpack.Unmarshal(payload, b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadBlock, err)
	}
	return b, nil
}

func LoadPrimitiveBlockFile(path string) (*PrimitiveBlock, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadPrimitiveBlock(f)
}

// DecodePrimitiveBlockYAML reads the source form of a block.
func DecodePrimitiveBlockYAML(r io.Reader) (*PrimitiveBlock, error) {
	b := &PrimitiveBlock{}
	if err := yaml.NewDecoder(r).Decode(b); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: %v", ErrBadBlock, err)
	}
	return b, nil
}

// LoadCollisionablePrimitiveBlock creates the primitives of the block file at
// path and inserts them in every slot of slots, placed by orientation and
// position. On error the container is left as it was, ids included.
func (c *MoveContainer) LoadCollisionablePrimitiveBlock(path string, slots SlotSet, orientation float64, position mgl64.Vec3) ([]PrimitiveID, error) {
	ids, err := c.loadPrimitiveBlock(path, slots, orientation, position)
	if err != nil {
		c.log.Error("cannot load primitive block", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	c.log.Info("loaded primitive block",
		zap.String("path", path),
		zap.Int("primitives", len(ids)),
		zap.Int("slots", slots.Len()))
	return ids, nil
}

func (c *MoveContainer) loadPrimitiveBlock(path string, slots SlotSet, orientation float64, position mgl64.Vec3) ([]PrimitiveID, error) {
	if slots == 0 || slots&^SlotRange(0, len(c.slots)) != 0 {
		return nil, fmt.Errorf("%w: slots %b", ErrSlotOutOfRange, uint64(slots))
	}
	b, err := LoadPrimitiveBlockFile(path)
	if err != nil {
		return nil, err
	}

	frame := NewTransformRigid(V2(position), orientation)
	nextID := c.nextID
	ids := make([]PrimitiveID, 0, len(b.Primitives))
	for i := range b.Primitives {
		d := &b.Primitives[i]
		id, err := c.AddPrimitive(d.PrimitiveDesc, slots)
		if err == nil {
			pos, yaw := frame.Place(d.Position, d.Orientation, position.Z())
			slots.Each(func(slot int) {
				if err == nil {
					err = c.InsertInWorldImage(id, slot, pos, yaw)
				}
			})
			ids = append(ids, id)
		}
		if err != nil {
			for _, id := range ids {
				c.RemovePrimitive(id)
			}
			c.nextID = nextID
			return nil, fmt.Errorf("primitive %d: %w", i, err)
		}
	}
	return ids, nil
}

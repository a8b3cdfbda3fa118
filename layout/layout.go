// Package layout decodes fixed-width on-chain account data against a
// statically declared, ordered field schema.
//
// A Schema is built from typed constructors that bind to the record's fields.
// Fields are read in declaration order, little-endian, with no padding.
package layout

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/badgerodon/collections/stack"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/egaotan/solana-lending-balance/utils"
)

type Kind uint8

const (
	KindU8 Kind = iota
	KindBool
	KindU64
	KindU128
	KindPublicKey
	KindStruct
)

func (k Kind) String() string {
	switch k {
	case KindU8:
		return "u8"
	case KindBool:
		return "bool"
	case KindU64:
		return "u64"
	case KindU128:
		return "u128"
	case KindPublicKey:
		return "publicKey"
	case KindStruct:
		return "struct"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Size is the wire width of a scalar kind. Structs report 0, their width is
// the sum of their fields.
func (k Kind) Size() int {
	switch k {
	case KindU8, KindBool:
		return 1
	case KindU64:
		return 8
	case KindU128:
		return 16
	case KindPublicKey:
		return solana.PublicKeyLength
	}
	return 0
}

var maxU128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

type Field struct {
	Name   string
	Kind   Kind
	Fields Schema

	u8   *uint8
	b    *bool
	u64  *uint64
	u128 **big.Int
	key  *solana.PublicKey
}

type Schema []Field

func U8(name string, v *uint8) Field {
	return Field{Name: name, Kind: KindU8, u8: v}
}

func Bool(name string, v *bool) Field {
	return Field{Name: name, Kind: KindBool, b: v}
}

func U64(name string, v *uint64) Field {
	return Field{Name: name, Kind: KindU64, u64: v}
}

// U128 binds a 16-byte little-endian unsigned integer to a *big.Int.
func U128(name string, v **big.Int) Field {
	return Field{Name: name, Kind: KindU128, u128: v}
}

func PublicKey(name string, v *solana.PublicKey) Field {
	return Field{Name: name, Kind: KindPublicKey, key: v}
}

func Struct(name string, fields ...Field) Field {
	return Field{Name: name, Kind: KindStruct, Fields: fields}
}

func (f Field) Size() int {
	if f.Kind == KindStruct {
		return f.Fields.Size()
	}
	return f.Kind.Size()
}

func (s Schema) Size() int {
	size := 0
	for _, field := range s {
		size += field.Size()
	}
	return size
}

type leaf struct {
	path  string
	field Field
}

// leaves flattens nested structs into scalar fields, keeping declaration order.
func (s Schema) leaves() []leaf {
	leaves := make([]leaf, 0, len(s))
	st := stack.New()
	for i := len(s) - 1; i >= 0; i-- {
		st.Push(leaf{path: s[i].Name, field: s[i]})
	}
	for st.Len() > 0 {
		item := st.Pop().(leaf)
		if item.field.Kind != KindStruct {
			leaves = append(leaves, item)
			continue
		}
		for i := len(item.field.Fields) - 1; i >= 0; i-- {
			child := item.field.Fields[i]
			st.Push(leaf{path: item.path + "." + child.Name, field: child})
		}
	}
	return leaves
}

// Decode fills the bound fields from data. data must be exactly Size() bytes.
func (s Schema) Decode(data []byte) error {
	size := s.Size()
	if len(data) != size {
		return &DecodeError{Expected: size, Actual: len(data)}
	}
	dec := bin.NewBorshDecoder(data)
	offset := 0
	for _, item := range s.leaves() {
		width := item.field.Size()
		if offset+width > len(data) {
			return &DecodeError{Field: item.path, Offset: offset, Expected: offset + width, Actual: len(data)}
		}
		if err := item.field.decode(dec); err != nil {
			return &DecodeError{Field: item.path, Offset: offset, Expected: size, Actual: len(data), Err: err}
		}
		offset += width
	}
	return nil
}

func (f Field) decode(dec *bin.Decoder) error {
	switch f.Kind {
	case KindU8:
		v, err := dec.ReadUint8()
		if err != nil {
			return err
		}
		*f.u8 = v
	case KindBool:
		v, err := dec.ReadUint8()
		if err != nil {
			return err
		}
		*f.b = v != 0
	case KindU64:
		v, err := dec.ReadUint64(binary.LittleEndian)
		if err != nil {
			return err
		}
		*f.u64 = v
	case KindU128:
		raw, err := dec.ReadNBytes(16)
		if err != nil {
			return err
		}
		be := make([]byte, 16)
		utils.ReverseBytes(be, raw)
		*f.u128 = new(big.Int).SetBytes(be)
	case KindPublicKey:
		raw, err := dec.ReadNBytes(solana.PublicKeyLength)
		if err != nil {
			return err
		}
		*f.key = solana.PublicKeyFromBytes(raw)
	default:
		return fmt.Errorf("field kind %s can not be decoded directly", f.Kind)
	}
	return nil
}

// Encode writes the bound field values back in schema order. A nil u128 is
// written as zero.
func (s Schema) Encode() ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Grow(s.Size())
	enc := bin.NewBorshEncoder(buf)
	for _, item := range s.leaves() {
		if err := item.field.encode(enc); err != nil {
			return nil, fmt.Errorf("encode field %s err: %w", item.path, err)
		}
	}
	return buf.Bytes(), nil
}

func (f Field) encode(enc *bin.Encoder) error {
	switch f.Kind {
	case KindU8:
		return enc.WriteUint8(*f.u8)
	case KindBool:
		if *f.b {
			return enc.WriteUint8(1)
		}
		return enc.WriteUint8(0)
	case KindU64:
		return enc.WriteUint64(*f.u64, binary.LittleEndian)
	case KindU128:
		v := *f.u128
		if v == nil {
			v = new(big.Int)
		}
		if v.Sign() < 0 || v.Cmp(maxU128) > 0 {
			return fmt.Errorf("value %s does not fit in u128", v)
		}
		be := v.FillBytes(make([]byte, 16))
		le := make([]byte, 16)
		utils.ReverseBytes(le, be)
		return enc.WriteBytes(le, false)
	case KindPublicKey:
		return enc.WriteBytes(f.key.Bytes(), false)
	}
	return fmt.Errorf("field kind %s can not be encoded directly", f.Kind)
}

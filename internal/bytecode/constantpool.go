// Package bytecode decodes JVM .class files far enough to recover, per
// method, the set of methods it may invoke. It parses the constant pool,
// the method table, and each method's Code attribute, walking the
// variable-length instruction stream byte by byte.
package bytecode

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Constant pool tags (JVMS §4.4).
const (
	tagUtf8               = 1
	tagInteger            = 3
	tagFloat              = 4
	tagLong               = 5
	tagDouble             = 6
	tagClass              = 7
	tagString             = 8
	tagFieldref           = 9
	tagMethodref          = 10
	tagInterfaceMethodref = 11
	tagNameAndType        = 12
	tagMethodHandle       = 15
	tagMethodType         = 16
	tagDynamic            = 17
	tagInvokeDynamic      = 18
	tagModule             = 19
	tagPackage            = 20
)

var errTruncated = errors.New("truncated class file")

// poolEntry is one constant pool slot. Long/Double occupy two slots; the
// second slot stays zero-valued.
type poolEntry struct {
	tag  byte
	utf8 string
	// ref1/ref2 hold the entry's index operands (name_index,
	// class_index/name_and_type_index, ...), meaning depends on tag.
	ref1 uint16
	ref2 uint16
}

// ConstantPool is the class file's shared literal/reference table,
// addressed by 1-based index.
type ConstantPool struct {
	entries []poolEntry // entries[0] unused
}

// reader is a bounded big-endian cursor over the class file bytes.
type reader struct {
	data []byte
	pos  int
}

func (r *reader) remaining() int { return len(r.data) - r.pos }

func (r *reader) u1() (byte, error) {
	if r.remaining() < 1 {
		return 0, errTruncated
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *reader) u2() (uint16, error) {
	if r.remaining() < 2 {
		return 0, errTruncated
	}
	v := binary.BigEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *reader) u4() (uint32, error) {
	if r.remaining() < 4 {
		return 0, errTruncated
	}
	v := binary.BigEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *reader) bytes(n int) ([]byte, error) {
	if n < 0 || r.remaining() < n {
		return nil, errTruncated
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) skip(n int) error {
	if n < 0 || r.remaining() < n {
		return errTruncated
	}
	r.pos += n
	return nil
}

// parseConstantPool reads constant_pool_count entries from the cursor.
func parseConstantPool(r *reader) (*ConstantPool, error) {
	count, err := r.u2()
	if err != nil {
		return nil, err
	}
	cp := &ConstantPool{entries: make([]poolEntry, count)}

	for i := uint16(1); i < count; i++ {
		tag, err := r.u1()
		if err != nil {
			return nil, err
		}
		entry := poolEntry{tag: tag}

		switch tag {
		case tagUtf8:
			length, err := r.u2()
			if err != nil {
				return nil, err
			}
			raw, err := r.bytes(int(length))
			if err != nil {
				return nil, err
			}
			entry.utf8 = string(raw)
		case tagInteger, tagFloat:
			if err := r.skip(4); err != nil {
				return nil, err
			}
		case tagLong, tagDouble:
			if err := r.skip(8); err != nil {
				return nil, err
			}
			cp.entries[i] = entry
			i++ // 8-byte constants take two pool slots
			continue
		case tagClass, tagString, tagMethodType, tagModule, tagPackage:
			ref, err := r.u2()
			if err != nil {
				return nil, err
			}
			entry.ref1 = ref
		case tagFieldref, tagMethodref, tagInterfaceMethodref, tagNameAndType, tagDynamic, tagInvokeDynamic:
			ref1, err := r.u2()
			if err != nil {
				return nil, err
			}
			ref2, err := r.u2()
			if err != nil {
				return nil, err
			}
			entry.ref1, entry.ref2 = ref1, ref2
		case tagMethodHandle:
			if err := r.skip(3); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("constant pool index %d: unknown tag %d", i, tag)
		}

		cp.entries[i] = entry
	}
	return cp, nil
}

func (cp *ConstantPool) entry(index uint16) (poolEntry, bool) {
	if index == 0 || int(index) >= len(cp.entries) {
		return poolEntry{}, false
	}
	return cp.entries[index], true
}

// Utf8 returns the string at index, or "" if absent or not a Utf8 entry.
func (cp *ConstantPool) Utf8(index uint16) string {
	e, ok := cp.entry(index)
	if !ok || e.tag != tagUtf8 {
		return ""
	}
	return e.utf8
}

// ClassName resolves a Class entry to its binary name ("com/example/Foo").
func (cp *ConstantPool) ClassName(index uint16) string {
	e, ok := cp.entry(index)
	if !ok || e.tag != tagClass {
		return ""
	}
	return cp.Utf8(e.ref1)
}

// MethodRef identifies an invoked method: owning class (binary name),
// method name, and type descriptor.
type MethodRef struct {
	Class      string
	Name       string
	Descriptor string
}

// ResolveMethodRef resolves a Methodref or InterfaceMethodref entry through
// its Class and NameAndType links. Returns false when the chain is broken.
func (cp *ConstantPool) ResolveMethodRef(index uint16) (MethodRef, bool) {
	e, ok := cp.entry(index)
	if !ok || (e.tag != tagMethodref && e.tag != tagInterfaceMethodref) {
		return MethodRef{}, false
	}
	class := cp.ClassName(e.ref1)

	nat, ok := cp.entry(e.ref2)
	if !ok || nat.tag != tagNameAndType {
		return MethodRef{}, false
	}
	name := cp.Utf8(nat.ref1)
	descriptor := cp.Utf8(nat.ref2)
	if class == "" || name == "" {
		return MethodRef{}, false
	}
	return MethodRef{Class: class, Name: name, Descriptor: descriptor}, true
}

package bytecode

import (
	"fmt"
)

const classMagic = 0xCAFEBABE

// Method access flags (JVMS §4.6). Only the flags entrypoint detection
// needs are named.
const (
	AccPublic   = 0x0001
	AccPrivate  = 0x0002
	AccStatic   = 0x0008
	AccAbstract = 0x0400
	AccNative   = 0x0100
)

// Method is one entry of the class file's method table, with the calls
// recovered from its Code attribute.
type Method struct {
	Name        string
	Descriptor  string
	AccessFlags uint16

	// Calls holds the resolved invoke* targets in bytecode order.
	Calls []MethodRef
	// SkippedDynamic counts invokedynamic sites, which are deliberately
	// left unresolved (lambda/bootstrap dispatch is a documented precision
	// loss, not a defect).
	SkippedDynamic int
	// Truncated is set when the instruction stream ended mid-instruction;
	// calls recovered before the cut are kept.
	Truncated bool
}

// IsPublic reports the ACC_PUBLIC flag.
func (m *Method) IsPublic() bool { return m.AccessFlags&AccPublic != 0 }

// IsStatic reports the ACC_STATIC flag.
func (m *Method) IsStatic() bool { return m.AccessFlags&AccStatic != 0 }

// ClassFile is the decoded view of one .class file: identity plus the
// method table with recovered call targets.
type ClassFile struct {
	// ClassName and SuperName are binary names ("com/example/Foo").
	ClassName string
	SuperName string
	AccessFlags uint16
	Methods   []Method
}

// Parse decodes a .class file. A malformed header, constant pool, or
// top-level structure is an error (the caller skips the file with a
// warning); a truncated Code attribute only stops that one method.
func Parse(data []byte) (*ClassFile, error) {
	r := &reader{data: data}

	magic, err := r.u4()
	if err != nil {
		return nil, err
	}
	if magic != classMagic {
		return nil, fmt.Errorf("bad magic 0x%08X", magic)
	}
	// minor, major version
	if err := r.skip(4); err != nil {
		return nil, err
	}

	cp, err := parseConstantPool(r)
	if err != nil {
		return nil, fmt.Errorf("constant pool: %w", err)
	}

	cf := &ClassFile{}
	flags, err := r.u2()
	if err != nil {
		return nil, err
	}
	cf.AccessFlags = flags

	thisClass, err := r.u2()
	if err != nil {
		return nil, err
	}
	cf.ClassName = cp.ClassName(thisClass)
	if cf.ClassName == "" {
		return nil, fmt.Errorf("unresolvable this_class index %d", thisClass)
	}

	superClass, err := r.u2()
	if err != nil {
		return nil, err
	}
	cf.SuperName = cp.ClassName(superClass)

	// interfaces
	ifaceCount, err := r.u2()
	if err != nil {
		return nil, err
	}
	if err := r.skip(2 * int(ifaceCount)); err != nil {
		return nil, err
	}

	// fields: same layout as methods, attributes skipped wholesale
	if err := skipMembers(r); err != nil {
		return nil, fmt.Errorf("fields: %w", err)
	}

	methodCount, err := r.u2()
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(methodCount); i++ {
		m, err := parseMethod(r, cp)
		if err != nil {
			return nil, fmt.Errorf("method %d: %w", i, err)
		}
		cf.Methods = append(cf.Methods, m)
	}

	// Trailing class attributes are irrelevant here.
	return cf, nil
}

// skipMembers skips a field_info/method_info table without decoding it.
func skipMembers(r *reader) error {
	count, err := r.u2()
	if err != nil {
		return err
	}
	for i := 0; i < int(count); i++ {
		// access_flags, name_index, descriptor_index
		if err := r.skip(6); err != nil {
			return err
		}
		if err := skipAttributes(r); err != nil {
			return err
		}
	}
	return nil
}

func skipAttributes(r *reader) error {
	count, err := r.u2()
	if err != nil {
		return err
	}
	for i := 0; i < int(count); i++ {
		if err := r.skip(2); err != nil { // attribute_name_index
			return err
		}
		length, err := r.u4()
		if err != nil {
			return err
		}
		if err := r.skip(int(length)); err != nil {
			return err
		}
	}
	return nil
}

// parseMethod reads one method_info, decoding the Code attribute when
// present and skipping every other attribute.
func parseMethod(r *reader, cp *ConstantPool) (Method, error) {
	var m Method

	flags, err := r.u2()
	if err != nil {
		return m, err
	}
	m.AccessFlags = flags

	nameIndex, err := r.u2()
	if err != nil {
		return m, err
	}
	m.Name = cp.Utf8(nameIndex)

	descIndex, err := r.u2()
	if err != nil {
		return m, err
	}
	m.Descriptor = cp.Utf8(descIndex)

	attrCount, err := r.u2()
	if err != nil {
		return m, err
	}
	for i := 0; i < int(attrCount); i++ {
		attrNameIndex, err := r.u2()
		if err != nil {
			return m, err
		}
		length, err := r.u4()
		if err != nil {
			return m, err
		}
		if cp.Utf8(attrNameIndex) != "Code" {
			if err := r.skip(int(length)); err != nil {
				return m, err
			}
			continue
		}

		attr, err := r.bytes(int(length))
		if err != nil {
			return m, err
		}
		decodeCodeAttribute(attr, cp, &m)
	}
	return m, nil
}

// decodeCodeAttribute extracts the bytecode array from a Code attribute and
// scans it for invoke* instructions. Truncation inside the attribute stops
// decoding this method only.
func decodeCodeAttribute(attr []byte, cp *ConstantPool, m *Method) {
	ar := &reader{data: attr}
	// max_stack, max_locals
	if err := ar.skip(4); err != nil {
		m.Truncated = true
		return
	}
	codeLength, err := ar.u4()
	if err != nil {
		m.Truncated = true
		return
	}
	code, err := ar.bytes(int(codeLength))
	if err != nil {
		m.Truncated = true
		return
	}
	scanInstructions(code, cp, m)
}

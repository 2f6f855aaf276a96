package bytecode

import (
	"classlint/internal/core/errors"
	"testing"
)

func TestParseFieldType(t *testing.T) {
	cases := []struct {
		desc  string
		sort  Sort
		class string
		dims  int
		elem  Sort
		slots int
	}{
		{"I", SortInt, "", 0, 0, 1},
		{"J", SortLong, "", 0, 0, 2},
		{"D", SortDouble, "", 0, 0, 2},
		{"Z", SortBoolean, "", 0, 0, 1},
		{"Ljava/lang/String;", SortObject, "java/lang/String", 0, 0, 1},
		{"[I", SortArray, "", 1, SortInt, 1},
		{"[[Lcom/acme/Order;", SortArray, "com/acme/Order", 2, SortObject, 1},
	}
	for _, tc := range cases {
		got, err := ParseFieldType(tc.desc)
		if err != nil {
			t.Fatalf("ParseFieldType(%q): %v", tc.desc, err)
		}
		if got.Sort != tc.sort || got.ClassName != tc.class || got.Dims != tc.dims || got.Elem != tc.elem {
			t.Errorf("ParseFieldType(%q) = %+v", tc.desc, got)
		}
		if got.Slots() != tc.slots {
			t.Errorf("%q slots = %d, want %d", tc.desc, got.Slots(), tc.slots)
		}
		if got.String() != tc.desc {
			t.Errorf("round trip of %q gave %q", tc.desc, got.String())
		}
	}
}

func TestParseFieldTypeRejectsMalformed(t *testing.T) {
	for _, desc := range []string{"", "V", "Q", "Ljava/lang/String", "[V", "II", "[", "L;"} {
		_, err := ParseFieldType(desc)
		if err == nil {
			t.Errorf("expected error for %q", desc)
			continue
		}
		if !errors.IsCode(err, errors.CodeMalformedDescriptor) {
			t.Errorf("%q: unexpected error %v", desc, err)
		}
	}
}

func TestParseMethodType(t *testing.T) {
	mt, err := ParseMethodType("(IJLjava/lang/String;[D)Ljava/util/List;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mt.Params) != 4 {
		t.Fatalf("expected 4 params, got %d", len(mt.Params))
	}
	if mt.Params[2].ClassName != "java/lang/String" {
		t.Errorf("unexpected third param %+v", mt.Params[2])
	}
	if mt.Return.Referenced() != "java/util/List" {
		t.Errorf("unexpected return %+v", mt.Return)
	}

	slots := mt.ParamSlots(false)
	want := []int{1, 2, 4, 5}
	for i := range want {
		if slots[i] != want[i] {
			t.Fatalf("instance slots = %v, want %v", slots, want)
		}
	}
	static := mt.ParamSlots(true)
	if static[0] != 0 || static[1] != 1 || static[2] != 3 {
		t.Errorf("static slots = %v", static)
	}
}

func TestParseMethodTypeVoidAndEmpty(t *testing.T) {
	mt, err := ParseMethodType("()V")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mt.Params) != 0 || mt.Return.Sort != SortVoid {
		t.Errorf("unexpected method type %+v", mt)
	}
}

func TestParseMethodTypeRejectsMalformed(t *testing.T) {
	for _, desc := range []string{"", "I)V", "(I", "(V)V", "(I)", "(I)VV", "(Lfoo)V"} {
		if _, err := ParseMethodType(desc); !errors.IsCode(err, errors.CodeMalformedDescriptor) {
			t.Errorf("%q: expected malformed descriptor error, got %v", desc, err)
		}
	}
}

func TestReferenced(t *testing.T) {
	prim, _ := ParseFieldType("[I")
	if prim.Referenced() != "" {
		t.Errorf("primitive array should not reference a class")
	}
	owner := ParseOwner("[Lcom/acme/Item;")
	if owner.Sort != SortArray || owner.Referenced() != "com/acme/Item" {
		t.Errorf("unexpected owner %+v", owner)
	}
	if ParseOwner("com/acme/Item").ClassName != "com/acme/Item" {
		t.Errorf("plain owner should be an object type")
	}
}

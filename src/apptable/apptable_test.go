package apptable

import "testing"

func TestRegisterAndLookup(t *testing.T) {
	tbl := NewEmpty()
	tbl.Register("hello_world", []byte{0x7f, 'E', 'L', 'F'})

	img, ok := tbl.Lookup("hello_world")
	if !ok {
		t.Fatal("expected hello_world to be registered")
	}
	if len(img) != 4 {
		t.Fatalf("got image of length %d, want 4", len(img))
	}

	if _, ok := tbl.Lookup("does_not_exist"); ok {
		t.Fatal("expected lookup of unregistered name to fail")
	}
}

func TestNamesPreservesRegistrationOrder(t *testing.T) {
	tbl := NewEmpty()
	tbl.Register("b", []byte{1})
	tbl.Register("a", []byte{2})
	names := tbl.Names()
	if len(names) != 2 || names[0] != "b" || names[1] != "a" {
		t.Fatalf("Names() = %v, want [b a]", names)
	}
	sorted := tbl.SortedNames()
	if sorted[0] != "a" || sorted[1] != "b" {
		t.Fatalf("SortedNames() = %v, want [a b]", sorted)
	}
}

func TestNewEmbeddedSkipsDocumentationFiles(t *testing.T) {
	tbl, err := NewEmbedded()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := tbl.Lookup("README.txt"); ok {
		t.Fatal("expected README.txt to be filtered out of the app table")
	}
}

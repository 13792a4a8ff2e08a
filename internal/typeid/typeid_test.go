package typeid

import (
	"strings"
	"testing"
)

func TestNewAndValidate(t *testing.T) {
	id := NewAssetID()
	if !strings.HasPrefix(id, PrefixAsset+"_") {
		t.Fatalf("id = %q", id)
	}
	if err := Validate(id, PrefixAsset); err != nil {
		t.Errorf("Validate(%q, asset) = %v", id, err)
	}
	if err := Validate(id, PrefixScene); err == nil {
		t.Error("asset id accepted as a scene id")
	}
	if err := Validate("../../etc/passwd", PrefixAsset); err == nil {
		t.Error("path accepted as an asset id")
	}
}

package debug

import "testing"

func TestCheckSum(t *testing.T) {
	if got := CheckSum(nil); got != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Errorf("CheckSum(nil) = %s", got)
	}
	if CheckSum([]byte{1}) == CheckSum([]byte{2}) {
		t.Error("different images share a checksum")
	}
}

package security

import "testing"

func TestHasher_HashAndCompare(t *testing.T) {
	h := NewHasher(4)

	hash, err := h.Hash([]byte("correct horse"))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "correct horse" {
		t.Fatal("hash equals plaintext")
	}
	if err := h.Compare(hash, []byte("correct horse")); err != nil {
		t.Errorf("Compare with right password: %v", err)
	}
	if err := h.Compare(hash, []byte("wrong password")); err == nil {
		t.Error("Compare with wrong password succeeded")
	}
}

func TestNewHasher_ClampsCost(t *testing.T) {
	cases := []struct{ in, want int }{
		{-1, 10},
		{0, 10},
		{3, 4},
		{12, 12},
		{99, 31},
	}
	for _, c := range cases {
		if got := NewHasher(c.in).Cost; got != c.want {
			t.Errorf("NewHasher(%d).Cost = %d, want %d", c.in, got, c.want)
		}
	}
}

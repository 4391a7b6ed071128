package audit

import (
	"os"
	"path/filepath"
	"testing"
)

func FuzzVerify(f *testing.F) {
	f.Add([]byte(""))
	f.Add([]byte("{}\n"))
	f.Add([]byte(`{"ts":"x","prev_hash":"` + GenesisHash + `"}` + "\n"))
	f.Add([]byte("not json\n{}\n"))

	f.Fuzz(func(t *testing.T, data []byte) {
		path := filepath.Join(t.TempDir(), "audit.jsonl")
		if err := os.WriteFile(path, data, 0600); err != nil {
			t.Skip()
		}
		// Must not panic on any file content.
		Verify(path)
		Tail(path, 5)
	})
}

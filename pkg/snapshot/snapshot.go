package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

var (
	mu    sync.Mutex
	calls = make(map[string]int)
)

// ValidateSnapshot compares obj as indented JSON against testdata/<func>-<n>.json
// The file is written on first use, so delete it to record a new snapshot
// depth is the number of helper frames between the test and this call
func ValidateSnapshot(t *testing.T, obj interface{}, depth int, msgAndArgs ...interface{}) {
	t.Helper()

	filename := nextFilename(depth + 2)
	got, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		t.Fatalf("could not marshal snapshot: %v", err)
	}

	expects, err := os.ReadFile(filename)
	if os.IsNotExist(err) {
		if err := write(filename, got); err != nil {
			t.Fatalf("could not write snapshot %s: %v", filename, err)
		}

		return
	} else if err != nil {
		t.Fatalf("could not read snapshot %s: %v", filename, err)
	}

	if !assert.Equal(t, strings.TrimSpace(string(expects)), strings.TrimSpace(string(got)), msgAndArgs...) {
		t.Logf("snapshot %s", filename)
	}
}

// nextFilename names the snapshot after the calling test, numbering repeated calls
func nextFilename(skip int) string {
	pc, _, _, _ := runtime.Caller(skip)
	name := filepath.Base(runtime.FuncForPC(pc).Name())

	mu.Lock()
	n := calls[name]
	calls[name] = n + 1
	mu.Unlock()

	return filepath.Join("testdata", fmt.Sprintf("%s-%d.json", name, n))
}

func write(filename string, b []byte) error {
	logrus.WithField("filename", filename).Info("writing snapshot file")
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return err
	}

	return os.WriteFile(filename, append(b, '\n'), 0o644)
}

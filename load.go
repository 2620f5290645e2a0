package ainb

import (
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// mmapReadFile memory-maps path read-only and copies its contents into an
// owned slice before unmapping. Decoding always needs a private mutable
// buffer (enum resolution writes into it), so the mapping itself is never
// kept around or written to.
func mmapReadFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer m.Unmap()

	data := append([]byte(nil), m...)
	return data, nil
}

package xl

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Storage receives the package parts produced by Writer, addressed by
// their absolute part name (e.g. "/xl/workbook.xml").
type Storage interface {
	WriteBlob(path string, blob []byte) error
}

// entryName maps a part name to its container-relative form.
func entryName(part string) string {
	return strings.TrimPrefix(part, "/")
}

// ZipStorage packs parts into a .xlsx container. Close must be called once
// all parts are written.
type ZipStorage struct {
	z *zip.Writer
}

func NewZipStorage(out io.Writer) *ZipStorage {
	return &ZipStorage{z: zip.NewWriter(out)}
}

func (zs *ZipStorage) WriteBlob(path string, blob []byte) error {
	entry, err := zs.z.CreateHeader(&zip.FileHeader{
		Name:   entryName(path),
		Method: zip.Deflate,
	})
	if err == nil {
		_, err = entry.Write(blob)
	}
	return err
}

func (zs *ZipStorage) Close() error {
	return zs.z.Close()
}

// DirStorage lays the parts out as plain files under Dir.
type DirStorage struct {
	Dir string
}

func NewDirStorage(dir string) *DirStorage {
	return &DirStorage{Dir: dir}
}

func (ds *DirStorage) WriteBlob(path string, blob []byte) error {
	fn := filepath.Join(ds.Dir, filepath.FromSlash(entryName(path)))
	if err := os.MkdirAll(filepath.Dir(fn), 0o777); err != nil {
		return err
	}
	return os.WriteFile(fn, blob, 0o666)
}

// MemStorage keeps parts in memory, keyed by entry name.
type MemStorage map[string][]byte

func (ms MemStorage) WriteBlob(path string, blob []byte) error {
	ms[entryName(path)] = append([]byte(nil), blob...)
	return nil
}

package backup

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// DiffCount reports how many files under a are missing from b or differ
// from b's copy by content. VCS metadata and the service's exclusion
// patterns are skipped on both sides. Zero means b already carries all of
// a's content and no overlay is needed.
//
// The comparison is deliberately one-directional: files present only at b
// are newer work the overlay must not touch, so they do not count.
func (s *Service) DiffCount(a, b string) (int, error) {
	count := 0
	err := filepath.WalkDir(a, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == a {
			return nil
		}
		if s.excluded(d.Name()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(a, p)
		if err != nil {
			return err
		}
		same, err := sameContent(p, filepath.Join(b, rel))
		if err != nil {
			return err
		}
		if !same {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("diff %s vs %s: %w", a, b, err)
	}
	return count, nil
}

// sameContent reports whether two files hold identical bytes. A missing
// counterpart is simply "different", not an error.
func sameContent(a, b string) (bool, error) {
	infoA, err := os.Stat(a)
	if err != nil {
		return false, err
	}
	infoB, err := os.Stat(b)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if infoA.Size() != infoB.Size() {
		return false, nil
	}

	fa, err := os.Open(a)
	if err != nil {
		return false, err
	}
	defer fa.Close()
	fb, err := os.Open(b)
	if err != nil {
		return false, err
	}
	defer fb.Close()

	bufA := make([]byte, 64*1024)
	bufB := make([]byte, 64*1024)
	for {
		nA, errA := io.ReadFull(fa, bufA)
		nB, errB := io.ReadFull(fb, bufB)
		if nA != nB || !bytes.Equal(bufA[:nA], bufB[:nB]) {
			return false, nil
		}
		if errA == io.EOF || errA == io.ErrUnexpectedEOF {
			return errB == io.EOF || errB == io.ErrUnexpectedEOF, nil
		}
		if errA != nil {
			return false, errA
		}
		if errB != nil {
			return false, errB
		}
	}
}

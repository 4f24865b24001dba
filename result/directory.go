// Copyright 2024 The Pageload Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package result

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// MetaDir is the name of the subdirectory that marks a directory
// of test results and holds its manifest.
const MetaDir = ".pageload"

var (
	// ErrNotFound is returned when no test result matches a
	// signature prefix.
	ErrNotFound = errors.New("no matching test result")

	// ErrAmbiguous is returned when several test results match a
	// signature prefix.
	ErrAmbiguous = errors.New("ambiguous signature prefix")
)

// A Directory is a directory of test results of one named test.
type Directory struct {
	dir     string
	results []*TestResult
}

// Load opens the directory of test results dir. Subdirectories
// whose names are timestamps and which contain a request.xml are
// test results; everything else is ignored. Results are ordered by
// name, which is start time order.
func Load(dir string) (*Directory, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	d := &Directory{dir: dir}
	for _, ent := range ents {
		if !ent.IsDir() {
			continue
		}
		if _, err := time.Parse(TimeLayout, ent.Name()); err != nil {
			continue
		}
		path := filepath.Join(dir, ent.Name())
		if fi, err := os.Stat(filepath.Join(path, "request.xml")); err != nil || !fi.Mode().IsRegular() {
			continue
		}
		r, err := Open(path)
		if err != nil {
			return nil, err
		}
		d.results = append(d.results, r)
	}
	return d, nil
}

// Discover loads every directory of test results directly below
// base. A directory of test results is one that has a MetaDir
// subdirectory. Directories are ordered by name.
func Discover(base string) ([]*Directory, error) {
	fi, err := os.Stat(base)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", base)
	}
	ents, err := os.ReadDir(base)
	if err != nil {
		return nil, err
	}
	var dirs []*Directory
	for _, ent := range ents {
		if !ent.IsDir() {
			continue
		}
		path := filepath.Join(base, ent.Name())
		if fi, err := os.Stat(filepath.Join(path, MetaDir)); err != nil || !fi.IsDir() {
			continue
		}
		d, err := Load(path)
		if err != nil {
			return nil, err
		}
		dirs = append(dirs, d)
	}
	return dirs, nil
}

// Name returns the base name of d.
func (d *Directory) Name() string { return filepath.Base(d.dir) }

// Dir returns the path of d.
func (d *Directory) Dir() string { return d.dir }

// Results returns the test results in d.
func (d *Directory) Results() []*TestResult { return d.results }

// Add appends r to d. It does not update the manifest; call
// WriteManifest for that.
func (d *Directory) Add(r *TestResult) {
	d.results = append(d.results, r)
}

// Remove deletes the storage of r and drops it from d. It does not
// update the manifest.
func (d *Directory) Remove(r *TestResult) error {
	for i, x := range d.results {
		if x != r {
			continue
		}
		if err := r.Remove(); err != nil {
			return err
		}
		d.results = append(d.results[:i:i], d.results[i+1:]...)
		return nil
	}
	return fmt.Errorf("%s: %s: %w", d.Name(), r.ShortSignature(), ErrNotFound)
}

// Lookup returns the test result in d whose signature starts with
// prefix, ignoring case.
func (d *Directory) Lookup(prefix string) (*TestResult, error) {
	prefix = strings.ToLower(prefix)
	var found *TestResult
	for _, r := range d.results {
		if !strings.HasPrefix(strings.ToLower(r.Signature()), prefix) {
			continue
		}
		if found != nil && found.Signature() != r.Signature() {
			return nil, fmt.Errorf("%s: %w", prefix, ErrAmbiguous)
		}
		found = r
	}
	if found == nil {
		return nil, fmt.Errorf("%s: %w", prefix, ErrNotFound)
	}
	return found, nil
}

// Find looks up prefix in each of dirs in turn.
func Find(dirs []*Directory, prefix string) (*Directory, *TestResult, error) {
	for _, d := range dirs {
		r, err := d.Lookup(prefix)
		if err == nil {
			return d, r, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, nil, err
		}
	}
	return nil, nil, fmt.Errorf("%s: %w", prefix, ErrNotFound)
}

// Manifest maps the signature of each result in d to its directory
// name.
func (d *Directory) Manifest() map[string]string {
	m := make(map[string]string, len(d.results))
	for _, r := range d.results {
		m[r.Signature()] = filepath.Base(r.Dir())
	}
	return m
}

// WriteManifest writes the manifest of d to MetaDir/manifest as a
// JSON object, creating MetaDir if needed.
func (d *Directory) WriteManifest() error {
	meta := filepath.Join(d.dir, MetaDir)
	if err := os.MkdirAll(meta, 0777); err != nil {
		return err
	}
	data, err := json.MarshalIndent(d.Manifest(), "", "    ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(filepath.Join(meta, "manifest"), data, 0666)
}

// ReadManifest reads the manifest written by WriteManifest.
func (d *Directory) ReadManifest() (map[string]string, error) {
	data, err := os.ReadFile(filepath.Join(d.dir, MetaDir, "manifest"))
	if err != nil {
		return nil, err
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%s: manifest: %w", d.Name(), err)
	}
	return m, nil
}

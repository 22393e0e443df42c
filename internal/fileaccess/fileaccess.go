// Package fileaccess loads and saves the host's target file.
//
// Operations never return a Go error to the caller. Every failure is logged
// and classified in the returned result, and a failed load yields an empty
// LoadedFile.
package fileaccess

import (
	"io"
	"io/fs"
	"os"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// filePerm is the mode for files created by Save (before umask)
const filePerm = 0o644

// Status classifies the outcome of a load or save
type Status string

const (
	StatusOK            Status = "ok"
	StatusNotConfigured Status = "not_configured" // no file given on launch
	StatusNotFound      Status = "not_found"
	StatusOpenFailed    Status = "open_failed"
	StatusReadFailed    Status = "read_failed"
	StatusDecodeFailed  Status = "decode_failed"
	StatusWriteFailed   Status = "write_failed"
	StatusFlushFailed   Status = "flush_failed"
)

// ErrInvalidText is reported when file contents are not valid UTF-8
var ErrInvalidText = encoding.ErrInvalidUTF8

// PathResolver supplies target paths. *resolver.Resolver implements it.
type PathResolver interface {
	// Resolve returns the target path with suffix appended, or "" when there is no target.
	Resolve(suffix string) string

	// WorkDir returns the working directory for diagnostics, or "".
	WorkDir() string
}

// LoadedFile is the value handed back to the viewer. Both fields are empty
// when the load failed.
type LoadedFile struct {
	FullPath string `json:"fullpath"`
	Contents string `json:"contents"`
}

// LoadResult is the outcome of Load
type LoadResult struct {
	File   LoadedFile
	Status Status
	Err    error
}

// OK reports whether the file was loaded
func (r LoadResult) OK() bool { return r.Status == StatusOK }

// SaveResult is the outcome of Save. Path is empty when there was no target.
type SaveResult struct {
	Path   string
	Status Status
	Err    error
}

// OK reports whether the contents were written and flushed
func (r SaveResult) OK() bool { return r.Status == StatusOK }

// Accessor performs loads and saves against resolved paths
type Accessor struct {
	fs    afero.Fs
	paths PathResolver
	log   logrus.FieldLogger

	mu    sync.Mutex
	locks map[string]*pathLock
}

// New creates an Accessor. A nil fsys uses the OS filesystem.
func New(fsys afero.Fs, paths PathResolver, log logrus.FieldLogger) *Accessor {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Accessor{
		fs:    fsys,
		paths: paths,
		log:   log.WithField("component", "fileaccess"),
		locks: make(map[string]*pathLock),
	}
}

// FullPath returns the path Load and Save would use for suffix
func (a *Accessor) FullPath(suffix string) string {
	return a.paths.Resolve(suffix)
}

// Load reads the whole target file as text
func (a *Accessor) Load(suffix string) LoadResult {
	path := a.paths.Resolve(suffix)
	log := a.log.WithField("path", path)
	if path == "" {
		log.Warn("no file given on launch, nothing to load")
		return LoadResult{Status: StatusNotConfigured}
	}

	f, err := a.fs.Open(path)
	if err != nil {
		status := StatusOpenFailed
		if errors.Is(err, fs.ErrNotExist) {
			status = StatusNotFound
		}
		err = errors.Wrapf(err, "open %s", path)
		log.WithError(err).
			WithField("cwd", a.paths.WorkDir()).
			WithField("status", status).
			Error("could not open file")
		return LoadResult{Status: status, Err: err}
	}
	defer f.Close()

	// Bytes pass through unchanged; the validator only rejects invalid UTF-8
	data, err := io.ReadAll(transform.NewReader(f, encoding.UTF8Validator))
	if errors.Is(err, ErrInvalidText) {
		err = errors.Wrapf(err, "decode %s", path)
		log.WithError(err).WithField("status", StatusDecodeFailed).Error("could not decode file")
		return LoadResult{Status: StatusDecodeFailed, Err: err}
	}
	if err != nil {
		err = errors.Wrapf(err, "read %s", path)
		log.WithError(err).WithField("status", StatusReadFailed).Error("could not read file")
		return LoadResult{Status: StatusReadFailed, Err: err}
	}

	log.WithField("bytes", len(data)).Info("file loaded")
	return LoadResult{
		File:   LoadedFile{FullPath: path, Contents: string(data)},
		Status: StatusOK,
	}
}

// Save creates or truncates the target file and writes contents to it. The
// write and flush steps are each attempted and logged on their own; a failed
// write still gets flushed and nothing is rolled back.
func (a *Accessor) Save(suffix, contents string) SaveResult {
	path := a.paths.Resolve(suffix)
	log := a.log.WithField("path", path)
	if path == "" {
		log.Warn("no file given on launch, nothing to save")
		return SaveResult{Status: StatusNotConfigured}
	}

	unlock := a.lock(path)
	defer unlock()

	f, err := a.fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm)
	if err != nil {
		err = errors.Wrapf(err, "create %s", path)
		log.WithError(err).
			WithField("cwd", a.paths.WorkDir()).
			WithField("status", StatusOpenFailed).
			Error("could not create file")
		return SaveResult{Path: path, Status: StatusOpenFailed, Err: err}
	}
	log.Debug("file opened for writing")

	res := SaveResult{Path: path, Status: StatusOK}

	n, err := f.WriteString(contents)
	if err != nil {
		res.Status = StatusWriteFailed
		res.Err = errors.Wrapf(err, "write %s", path)
		log.WithError(res.Err).WithField("bytes", n).Error("could not write file")
	} else {
		log.WithField("bytes", n).Debug("contents written")
	}

	if err := flushFile(f); err != nil {
		err = errors.Wrapf(err, "flush %s", path)
		log.WithError(err).Error("could not flush file")
		if res.Status == StatusOK {
			res.Status = StatusFlushFailed
			res.Err = err
		}
	} else {
		log.Debug("file flushed")
	}

	if res.OK() {
		log.WithField("bytes", len(contents)).Info("file saved")
	}
	return res
}

// flushFile syncs f to stable storage and closes it. Close runs even when
// the sync fails; the first error is returned.
func flushFile(f afero.File) error {
	err := f.Sync()
	if err != nil {
		err = errors.Wrap(err, "sync")
	}
	if cerr := f.Close(); err == nil && cerr != nil {
		err = errors.Wrap(cerr, "close")
	}
	return err
}

// pathLock is a mutex shared by the saves currently waiting on one path
type pathLock struct {
	mu   sync.Mutex
	refs int
}

// lock serializes saves to the same path within this process. The entry is
// dropped once no save holds or waits for it.
func (a *Accessor) lock(path string) func() {
	a.mu.Lock()
	l, ok := a.locks[path]
	if !ok {
		l = &pathLock{}
		a.locks[path] = l
	}
	l.refs++
	a.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		a.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(a.locks, path)
		}
		a.mu.Unlock()
	}
}

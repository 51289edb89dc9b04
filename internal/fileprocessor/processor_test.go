package fileprocessor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/moyu-x/image-tidy/internal"
	"github.com/moyu-x/image-tidy/internal/planner"
	"github.com/moyu-x/image-tidy/internal/sniff"
)

var (
	jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0x10, 'J', 'F', 'I', 'F', 0, 1, 1, 0}
	pngBytes  = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n', 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}
	textBytes = []byte("just some notes, not an image")
)

// failingRenameFs 对指定文件名的改名返回错误
type failingRenameFs struct {
	afero.Fs
	name string
}

func (f *failingRenameFs) Rename(oldname, newname string) error {
	if filepath.Base(oldname) == f.name {
		return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: os.ErrPermission}
	}
	return f.Fs.Rename(oldname, newname)
}

type memJournal struct {
	records []*internal.JournalRecord
}

func (j *memJournal) Record(rec *internal.JournalRecord) error {
	j.records = append(j.records, rec)
	return nil
}

func setupDir(t *testing.T, files map[string][]byte) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll("/pics", 0755); err != nil {
		t.Fatal(err)
	}
	for name, body := range files {
		if err := afero.WriteFile(fs, filepath.Join("/pics", name), body, 0644); err != nil {
			t.Fatalf("创建测试文件失败: %v", err)
		}
	}
	return fs
}

func fixOptions() Options {
	return Options{Clean: true, FixExtensions: true}
}

func mustExist(t *testing.T, fs afero.Fs, name string, want bool) {
	t.Helper()
	ok, err := afero.Exists(fs, filepath.Join("/pics", name))
	if err != nil {
		t.Fatal(err)
	}
	if ok != want {
		t.Errorf("%s exists = %v, want %v", name, ok, want)
	}
}

func TestProcessDir_CleanAndFixExtension(t *testing.T) {
	fs := setupDir(t, map[string][]byte{"weird_name.jpg'": pngBytes})

	p, err := New(fs, "/pics", fixOptions())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	stats, err := p.ProcessDir(context.Background(), nil)
	if err != nil {
		t.Fatalf("ProcessDir() error = %v", err)
	}

	if stats.Changed != 1 || stats.Total != 1 {
		t.Errorf("stats = %+v, want 1 changed of 1", stats)
	}
	mustExist(t, fs, "weird_name.png", true)
	mustExist(t, fs, "weird_name.jpg'", false)
}

func TestProcessDir_CollisionCounter(t *testing.T) {
	fs := setupDir(t, map[string][]byte{
		"a.jpg":   jpegBytes,
		"a_1.jpg": jpegBytes,
		"a.png":   jpegBytes,
	})

	p, err := New(fs, "/pics", fixOptions())
	if err != nil {
		t.Fatal(err)
	}

	var outcomes []Outcome
	_, err = p.ProcessDir(context.Background(), func(_, _ int, o Outcome) {
		outcomes = append(outcomes, o)
	})
	if err != nil {
		t.Fatal(err)
	}

	mustExist(t, fs, "a_2.jpg", true)
	mustExist(t, fs, "a.png", false)
	mustExist(t, fs, "a.jpg", true)
	mustExist(t, fs, "a_1.jpg", true)

	var changed []Outcome
	for _, o := range outcomes {
		if o.Changed() {
			changed = append(changed, o)
		}
	}
	if len(changed) != 1 {
		t.Fatalf("changed = %d, want 1", len(changed))
	}
	plan := changed[0].Plan
	if plan == nil || plan.Proposed != "a.jpg" || plan.Final != "a_2.jpg" {
		t.Errorf("plan = %+v, want a.jpg -> a_2.jpg", plan)
	}
	if plan.Reason != planner.ReasonExtensionMismatch {
		t.Errorf("reason = %v, want extension", plan.Reason)
	}
}

func TestProcessDir_DryRunLeavesDiskAlone(t *testing.T) {
	fs := setupDir(t, map[string][]byte{
		"x.gif": jpegBytes,
		"x.png": jpegBytes,
	})

	opts := fixOptions()
	opts.DryRun = true
	journal := &memJournal{}
	opts.Journal = journal

	p, err := New(fs, "/pics", opts)
	if err != nil {
		t.Fatal(err)
	}

	var finals []string
	if _, err := p.ProcessDir(context.Background(), func(_, _ int, o Outcome) {
		finals = append(finals, o.Final)
	}); err != nil {
		t.Fatal(err)
	}

	// 第二个文件必须看到第一个文件计划占用的名字
	want := []string{"x.jpg", "x_1.jpg"}
	if strings.Join(finals, ",") != strings.Join(want, ",") {
		t.Errorf("finals = %v, want %v", finals, want)
	}
	mustExist(t, fs, "x.gif", true)
	mustExist(t, fs, "x.png", true)
	mustExist(t, fs, "x.jpg", false)

	if len(journal.records) != 0 {
		t.Errorf("dry run wrote %d journal records", len(journal.records))
	}
}

func TestProcessDir_UnknownAndShortFilesUnchanged(t *testing.T) {
	fs := setupDir(t, map[string][]byte{
		"notes.jpg": textBytes,
		"tiny.png":  {0xFF, 0xD8},
		"empty.gif": {},
	})

	p, err := New(fs, "/pics", fixOptions())
	if err != nil {
		t.Fatal(err)
	}
	stats, err := p.ProcessDir(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}

	if stats.Unchanged != 3 || stats.Failed != 0 {
		t.Errorf("stats = %+v, want 3 unchanged", stats)
	}
	mustExist(t, fs, "notes.jpg", true)
	mustExist(t, fs, "tiny.png", true)
	mustExist(t, fs, "empty.gif", true)
}

func TestProcessDir_DefaultsToImageExtensions(t *testing.T) {
	fs := setupDir(t, map[string][]byte{
		"BMW_notes.txt": []byte("BMW specs and more text here"),
		"pic.png":       jpegBytes,
	})

	p, err := New(fs, "/pics", fixOptions())
	if err != nil {
		t.Fatal(err)
	}
	stats, err := p.ProcessDir(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}

	if stats.Total != 1 || stats.Changed != 1 {
		t.Errorf("stats = %+v, want 1 changed of 1", stats)
	}
	mustExist(t, fs, "BMW_notes.txt", true)
	mustExist(t, fs, "BMW_notes.bmp", false)
	mustExist(t, fs, "pic.jpg", true)
}

func TestProcessDir_CleanOnlyTakesAllFiles(t *testing.T) {
	fs := setupDir(t, map[string][]byte{"BMW_notes.txt'": []byte("BMW specs")})

	p, err := New(fs, "/pics", Options{Clean: true})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.ProcessDir(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	mustExist(t, fs, "BMW_notes.txt", true)
}

func TestProcessDir_RenameFailureContinues(t *testing.T) {
	base := setupDir(t, map[string][]byte{
		"a.png": jpegBytes,
		"b.png": jpegBytes,
	})
	fs := &failingRenameFs{Fs: base, name: "a.png"}

	journal := &memJournal{}
	opts := fixOptions()
	opts.Journal = journal
	p, err := New(fs, "/pics", opts)
	if err != nil {
		t.Fatal(err)
	}

	var outcomes []Outcome
	stats, err := p.ProcessDir(context.Background(), func(_, _ int, o Outcome) {
		outcomes = append(outcomes, o)
	})
	if err != nil {
		t.Fatalf("ProcessDir() error = %v", err)
	}
	if len(outcomes) != 2 {
		t.Fatalf("outcomes = %d, want 2", len(outcomes))
	}

	failed := outcomes[0]
	var fileErr *FileError
	if failed.Status != internal.StatusFailed || !errors.As(failed.Err, &fileErr) {
		t.Errorf("a.png outcome = %+v, want failed with *FileError", failed)
	} else if fileErr.Op != "rename" {
		t.Errorf("FileError.Op = %q, want rename", fileErr.Op)
	}
	if !p.ns.Exists("a.png") || p.ns.Exists("a.jpg") {
		t.Error("failed rename must not change the namespace")
	}

	if outcomes[1].Status != internal.StatusChanged || outcomes[1].Final != "b.jpg" {
		t.Errorf("b.png outcome = %+v, want changed to b.jpg", outcomes[1])
	}
	mustExist(t, base, "a.png", true)
	mustExist(t, base, "b.jpg", true)
	if stats.Failed != 1 || stats.Changed != 1 {
		t.Errorf("stats = %+v", stats)
	}

	if len(journal.records) != 2 {
		t.Fatalf("records = %d, want 2", len(journal.records))
	}
	rec := journal.records[0]
	if rec.Status != internal.StatusFailed || rec.Final != "a.jpg" || rec.Error == "" {
		t.Errorf("failed record = %+v", rec)
	}
}

func TestProcessFile_EmptyAfterClean(t *testing.T) {
	fs := setupDir(t, map[string][]byte{"'": jpegBytes})
	p, err := New(fs, "/pics", fixOptions())
	if err != nil {
		t.Fatal(err)
	}
	entries, err := List(fs, "/pics")
	if err != nil || len(entries) != 1 {
		t.Fatalf("List() = %v, %v", entries, err)
	}

	o := p.ProcessFile(entries[0])
	if o.Status != internal.StatusFailed || !errors.Is(o.Err, ErrEmptyName) {
		t.Errorf("ProcessFile() = %+v, want ErrEmptyName", o)
	}
	mustExist(t, fs, "'", true)
	mustExist(t, fs, ".jpg", false)
}

func TestProcessDir_RenameWritesNoBytes(t *testing.T) {
	fs := setupDir(t, map[string][]byte{"a.png": jpegBytes})
	p, err := New(fs, "/pics", fixOptions())
	if err != nil {
		t.Fatal(err)
	}
	stats, err := p.ProcessDir(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Changed != 1 || stats.Bytes != 0 {
		t.Errorf("stats = %+v, want 1 changed and 0 bytes", stats)
	}
	if strings.Contains(stats.String(), "写入") {
		t.Errorf("summary reports written bytes:\n%s", stats.String())
	}
}

func TestProcessDir_CleanOnly(t *testing.T) {
	fs := setupDir(t, map[string][]byte{
		"photo.png',": jpegBytes,
		"photo.png":   pngBytes,
	})

	p, err := New(fs, "/pics", Options{Clean: true})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.ProcessDir(context.Background(), nil); err != nil {
		t.Fatal(err)
	}

	// 只清理不修正扩展名，冲突时加序号而不是覆盖
	mustExist(t, fs, "photo.png", true)
	mustExist(t, fs, "photo_1.png", true)
	mustExist(t, fs, "photo.png',", false)

	body, err := afero.ReadFile(fs, "/pics/photo.png")
	if err != nil {
		t.Fatal(err)
	}
	if sniff.Detect(body) != sniff.PNG {
		t.Error("existing photo.png was overwritten")
	}
}

func TestProcessDir_ExtensionFilter(t *testing.T) {
	fs := setupDir(t, map[string][]byte{
		"keep.txt'": textBytes,
		"pic.png'":  jpegBytes,
	})

	opts := fixOptions()
	opts.Extensions = []string{"PNG", ".jpg"}
	p, err := New(fs, "/pics", opts)
	if err != nil {
		t.Fatal(err)
	}
	stats, err := p.ProcessDir(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}

	if stats.Total != 1 {
		t.Errorf("Total = %d, want 1", stats.Total)
	}
	mustExist(t, fs, "pic.jpg", true)
	mustExist(t, fs, "keep.txt'", true)
}

func TestProcessDir_JournalRecords(t *testing.T) {
	fs := setupDir(t, map[string][]byte{"b.gif": pngBytes, "c.png": pngBytes})

	journal := &memJournal{}
	opts := fixOptions()
	opts.Journal = journal
	opts.RunID = "run-1"

	p, err := New(fs, "/pics", opts)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.ProcessDir(context.Background(), nil); err != nil {
		t.Fatal(err)
	}

	if len(journal.records) != 1 {
		t.Fatalf("records = %d, want 1", len(journal.records))
	}
	rec := journal.records[0]
	if rec.Original != "b.gif" || rec.Final != "b.png" || rec.RunID != "run-1" {
		t.Errorf("record = %+v", rec)
	}
	if rec.Status != internal.StatusChanged || rec.Reason != "extension" || rec.Format != "png" {
		t.Errorf("record = %+v", rec)
	}
}

func TestProcessDir_Cancelled(t *testing.T) {
	fs := setupDir(t, map[string][]byte{"a.png": jpegBytes})

	p, err := New(fs, "/pics", fixOptions())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.ProcessDir(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("ProcessDir() error = %v, want context.Canceled", err)
	}
	mustExist(t, fs, "a.png", true)
}

func TestNew_MissingDir(t *testing.T) {
	_, err := New(afero.NewMemMapFs(), "/nope", fixOptions())
	if !errors.Is(err, ErrDirNotFound) {
		t.Errorf("New() error = %v, want ErrDirNotFound", err)
	}
}

func TestNew_NotADirectory(t *testing.T) {
	fs := setupDir(t, map[string][]byte{"file.jpg": jpegBytes})
	_, err := New(fs, "/pics/file.jpg", fixOptions())
	if !errors.Is(err, ErrDirNotFound) {
		t.Errorf("New() error = %v, want ErrDirNotFound", err)
	}
}

func TestStore(t *testing.T) {
	fs := setupDir(t, nil)
	p, err := New(fs, "/pics", Options{MinSize: 4})
	if err != nil {
		t.Fatal(err)
	}

	o := p.Store("image_001.jpg", pngBytes)
	if o.Status != internal.StatusChanged || o.Final != "image_001.png" {
		t.Fatalf("Store() = %+v, want changed image_001.png", o)
	}
	mustExist(t, fs, "image_001.png", true)

	o = p.Store("image_001.jpg", pngBytes)
	if o.Status != internal.StatusSkipped {
		t.Errorf("duplicate Store() status = %v, want skipped", o.Status)
	}

	other := append(append([]byte{}, pngBytes...), 'x')
	o = p.Store("image_001.png", other)
	if o.Final != "image_001_1.png" {
		t.Errorf("Store() final = %q, want image_001_1.png", o.Final)
	}

	o = p.Store("small.jpg", []byte{1, 2})
	if o.Status != internal.StatusFailed || !errors.Is(o.Err, ErrTooSmall) {
		t.Errorf("small Store() = %+v, want ErrTooSmall", o)
	}
	mustExist(t, fs, "small.jpg", false)

	if p.Stats.Total != 4 || p.Stats.Changed != 2 || p.Stats.Skipped != 1 || p.Stats.Failed != 1 {
		t.Errorf("stats = %+v", p.Stats)
	}
	if want := int64(len(pngBytes) + len(other)); p.Stats.Bytes != want {
		t.Errorf("Bytes = %d, want %d", p.Stats.Bytes, want)
	}
}

func TestStore_VerifyRejects(t *testing.T) {
	fs := setupDir(t, nil)
	opts := Options{
		Verify: func(_ []byte, f sniff.Format) error {
			if f == sniff.Unknown {
				return errors.New("not an image")
			}
			return nil
		},
	}
	p, err := New(fs, "/pics", opts)
	if err != nil {
		t.Fatal(err)
	}

	o := p.Store("page.jpg", textBytes)
	if o.Status != internal.StatusFailed {
		t.Errorf("Store() status = %v, want failed", o.Status)
	}
	mustExist(t, fs, "page.jpg", false)
}

func TestStore_DryRun(t *testing.T) {
	fs := setupDir(t, nil)
	p, err := New(fs, "/pics", Options{DryRun: true})
	if err != nil {
		t.Fatal(err)
	}

	first := p.Store("a.jpg", jpegBytes)
	second := p.Store("a.jpg", append([]byte{}, pngBytes...))
	if first.Final != "a.jpg" || second.Final != "a.png" {
		t.Errorf("finals = %q, %q", first.Final, second.Final)
	}
	third := p.Store("a.jpg", append(append([]byte{}, jpegBytes...), 0))
	if third.Final != "a_1.jpg" {
		t.Errorf("third final = %q, want a_1.jpg", third.Final)
	}
	mustExist(t, fs, "a.jpg", false)
}

func TestLockDir(t *testing.T) {
	dir := t.TempDir()

	lock, err := LockDir(dir)
	if err != nil {
		t.Fatalf("LockDir() error = %v", err)
	}
	defer lock.Unlock()

	if _, err := LockDir(dir); !errors.Is(err, ErrDirLocked) {
		t.Errorf("second LockDir() error = %v, want ErrDirLocked", err)
	}

	if err := lock.Unlock(); err != nil {
		t.Fatal(err)
	}
	again, err := LockDir(dir)
	if err != nil {
		t.Fatalf("LockDir() after unlock error = %v", err)
	}
	again.Unlock()
}

func TestStats_String(t *testing.T) {
	s := &Stats{Total: 3, Changed: 1, Unchanged: 1, Failed: 1, Bytes: 2048}
	out := s.String()
	for _, want := range []string{"总文件数: 3", "已修复: 1", "失败: 1", "2.0 kB"} {
		if !strings.Contains(out, want) {
			t.Errorf("String() missing %q:\n%s", want, out)
		}
	}
}

func TestReject(t *testing.T) {
	p, err := New(setupDir(t, nil), "/pics", Options{})
	if err != nil {
		t.Fatal(err)
	}
	o := p.Reject("image_001.jpg", errors.New("404"))
	if o.Status != internal.StatusFailed || p.Stats.Failed != 1 || p.Stats.Total != 1 {
		t.Errorf("Reject() = %+v, stats = %+v", o, p.Stats)
	}
}

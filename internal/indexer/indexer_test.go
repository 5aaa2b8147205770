package indexer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/0xADE/ade-steam-search/internal/indexer/steam"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func feed(apps ...*steam.App) <-chan *steam.App {
	ch := make(chan *steam.App, len(apps))
	for _, app := range apps {
		ch <- app
	}
	close(ch)
	return ch
}

func named(id, name string) *steam.App {
	return &steam.App{ID: id, Name: name, HasName: true}
}

func writeManifest(lib, id, name string) {
	dir := filepath.Join(lib, "steamapps")
	gomega.Expect(os.MkdirAll(dir, 0755)).To(gomega.Succeed())
	body := fmt.Sprintf("\"AppState\"\n{\n\t\"appid\"\t\t\"%s\"\n\t\"name\"\t\t\"%s\"\n}\n", id, name)
	gomega.Expect(os.WriteFile(filepath.Join(dir, "appmanifest_"+id+".acf"), []byte(body), 0644)).To(gomega.Succeed())
}

var _ = ginkgo.Describe("ShouldFilter", func() {
	ginkgo.It("should exclude Proton and runtimes", func() {
		gomega.Expect(ShouldFilter("2805730")).To(gomega.BeTrue())
		gomega.Expect(ShouldFilter("1628350")).To(gomega.BeTrue())
		gomega.Expect(ShouldFilter("228980")).To(gomega.BeTrue())
	})

	ginkgo.It("should let unknown ids pass", func() {
		gomega.Expect(ShouldFilter("620")).To(gomega.BeFalse())
		gomega.Expect(ShouldFilter("")).To(gomega.BeFalse())
		gomega.Expect(ShouldFilter("not-an-id")).To(gomega.BeFalse())
	})
})

var _ = ginkgo.Describe("Build", func() {
	var ctx context.Context

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
	})

	ginkgo.It("should drop filtered entries", func() {
		idx, err := Build(ctx, feed(named("100", "Portal 2"), named("2805730", "Proton 9.0")))
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(idx.Count()).To(gomega.Equal(1))
		name, ok := idx.Name("100")
		gomega.Expect(ok).To(gomega.BeTrue())
		gomega.Expect(name).To(gomega.Equal("Portal 2"))
		_, ok = idx.Name("2805730")
		gomega.Expect(ok).To(gomega.BeFalse())
	})

	ginkgo.It("should skip failed yields and keep loading", func() {
		idx, err := Build(ctx, feed(
			&steam.App{Err: errors.New("bad manifest")},
			named("620", "Portal 2"),
		))
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(idx.Count()).To(gomega.Equal(1))
	})

	ginkgo.It("should skip entries without a name", func() {
		idx, err := Build(ctx, feed(&steam.App{ID: "730"}, named("620", "Portal 2")))
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		_, ok := idx.Name("730")
		gomega.Expect(ok).To(gomega.BeFalse())
		gomega.Expect(idx.Count()).To(gomega.Equal(1))
	})

	ginkgo.It("should let the last duplicate win", func() {
		idx, err := Build(ctx, feed(named("620", "Portal 2"), named("620", "Portal 2 (Beta)")))
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		name, _ := idx.Name("620")
		gomega.Expect(name).To(gomega.Equal("Portal 2 (Beta)"))
	})

	ginkgo.It("should give the same membership whether filtering comes before or after deduplication", func() {
		apps := []*steam.App{
			named("620", "Portal 2"),
			named("2805730", "Proton 9.0"),
			named("620", "Portal 2"),
			named("2805730", "Proton 9.0"),
			named("400", "Portal"),
		}

		filteredFirst, err := Build(ctx, feed(apps...))
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		dedup := map[string]*steam.App{}
		for _, app := range apps {
			dedup[app.ID] = app
		}
		var deduped []*steam.App
		for _, app := range dedup {
			deduped = append(deduped, app)
		}
		dedupFirst, err := Build(ctx, feed(deduped...))
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		twice, err := Build(ctx, feed(dedupFirst.appsForTest()...))
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		gomega.Expect(dedupFirst.Entries()).To(gomega.Equal(filteredFirst.Entries()))
		gomega.Expect(twice.Entries()).To(gomega.Equal(filteredFirst.Entries()))
	})

	ginkgo.It("should return the context error when cancelled", func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := Build(cctx, feed(named("620", "Portal 2")))
		gomega.Expect(err).To(gomega.MatchError(context.Canceled))
	})
})

var _ = ginkgo.Describe("Index", func() {
	ginkgo.It("should copy its input", func() {
		src := map[string]string{"620": "Portal 2"}
		idx := NewIndex(src)
		src["620"] = "changed"
		name, _ := idx.Name("620")
		gomega.Expect(name).To(gomega.Equal("Portal 2"))
	})

	ginkgo.It("should list entries sorted by name", func() {
		idx := NewIndex(map[string]string{"620": "Portal 2", "400": "Portal", "70": "Half-Life"})
		gomega.Expect(idx.Entries()).To(gomega.Equal([]Entry{
			{ID: "70", Name: "Half-Life"},
			{ID: "400", Name: "Portal"},
			{ID: "620", Name: "Portal 2"},
		}))
	})
})

var _ = ginkgo.Describe("Load", func() {
	var tmpDir string

	ginkgo.BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "steam-index-test-*")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
	})

	ginkgo.AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	ginkgo.It("should index manifests across libraries", func() {
		lib1 := filepath.Join(tmpDir, "lib1")
		lib2 := filepath.Join(tmpDir, "lib2")
		writeManifest(lib1, "620", "Portal 2")
		writeManifest(lib1, "1628350", "Steam Linux Runtime 3.0 (sniper)")
		writeManifest(lib2, "70", "Half-Life")

		idx, err := Load(context.Background(), []string{lib1, lib2, filepath.Join(tmpDir, "gone")})
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(idx.Entries()).To(gomega.Equal([]Entry{
			{ID: "70", Name: "Half-Life"},
			{ID: "620", Name: "Portal 2"},
		}))
	})
})

var _ = ginkgo.Describe("WatchLibraries", func() {
	var (
		tmpDir string
		lib    string
	)

	ginkgo.BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "steam-watch-test-*")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		lib = filepath.Join(tmpDir, "lib")
		writeManifest(lib, "620", "Portal 2")
	})

	ginkgo.AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	ginkgo.It("should return once a title is installed", func() {
		done := make(chan error, 1)
		go func() {
			done <- WatchLibraries(context.Background(), []string{lib})
		}()

		// Give the watcher time to register before changing the library.
		time.Sleep(200 * time.Millisecond)
		writeManifest(lib, "70", "Half-Life")

		gomega.Eventually(done, 5*time.Second).Should(gomega.Receive(gomega.BeNil()))
	})

	ginkgo.It("should ignore rewrites of existing manifests", func() {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- WatchLibraries(ctx, []string{lib})
		}()

		time.Sleep(200 * time.Millisecond)
		writeManifest(lib, "620", "Portal 2")
		gomega.Consistently(done, 500*time.Millisecond).ShouldNot(gomega.Receive())

		cancel()
		gomega.Eventually(done, 5*time.Second).Should(gomega.Receive(gomega.MatchError(context.Canceled)))
	})
})

var _ = ginkgo.Describe("AwaitChange", func() {
	var (
		tmpDir string
		lib    string
	)

	ginkgo.BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "steam-await-test-*")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		lib = filepath.Join(tmpDir, "lib")
		writeManifest(lib, "620", "Portal 2")
	})

	ginkgo.AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	ginkgo.It("should report a change when a title is installed", func() {
		done := make(chan bool, 1)
		go func() {
			done <- AwaitChange(context.Background(), []string{lib})
		}()

		time.Sleep(200 * time.Millisecond)
		writeManifest(lib, "70", "Half-Life")

		gomega.Eventually(done, 5*time.Second).Should(gomega.Receive(gomega.BeTrue()))
	})

	ginkgo.Context("when the watcher cannot be created", func() {
		ginkgo.BeforeEach(func() {
			restore := setNewWatcher(func() (*fsnotify.Watcher, error) {
				return nil, errors.New("too many open files")
			})
			ginkgo.DeferCleanup(restore)
		})

		ginkgo.It("should keep waiting until the context is done instead of failing", func() {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan bool, 1)
			go func() {
				done <- AwaitChange(ctx, []string{lib})
			}()

			gomega.Consistently(done, 300*time.Millisecond).ShouldNot(gomega.Receive())

			cancel()
			gomega.Eventually(done, 5*time.Second).Should(gomega.Receive(gomega.BeFalse()))
		})

		ginkgo.It("should surface the setup error from WatchLibraries", func() {
			err := WatchLibraries(context.Background(), []string{lib})
			gomega.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("too many open files")))
		})
	})
})

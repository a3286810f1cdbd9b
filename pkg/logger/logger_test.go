package logger_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/afero"

	"github.com/angeloszaimis/saucedemo-e2e/pkg/logger"
)

var _ = Describe("Logger", func() {
	var (
		fs      afero.Fs
		console *bytes.Buffer
		clock   time.Time
	)

	readLines := func(path string) []string {
		GinkgoHelper()
		data, err := afero.ReadFile(fs, path)
		Expect(err).NotTo(HaveOccurred())
		return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	}

	newLogger := func(name string) *logger.Logger {
		GinkgoHelper()
		l, err := logger.Create(name,
			logger.WithFs(fs),
			logger.WithConsole(console),
			logger.WithClock(func() time.Time { return clock }),
		)
		Expect(err).NotTo(HaveOccurred())
		return l
	}

	BeforeEach(func() {
		fs = afero.NewMemMapFs()
		console = &bytes.Buffer{}
		clock = time.Date(2026, 10, 14, 9, 47, 12, 345_000_000, time.UTC)
	})

	Describe("Create", func() {
		It("should create the log directory", func() {
			newLogger("TC-01-login-valid")

			exists, err := afero.DirExists(fs, "logs")
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeTrue())
		})

		It("should name the file after the test and the UTC date", func() {
			l := newLogger("TC-01-login-valid")
			Expect(l.LogFilePath()).To(Equal(filepath.Join("logs", "TC-01-login-valid-2026-10-14.log")))
		})

		It("should use the UTC calendar day", func() {
			clock = time.Date(2026, 10, 14, 23, 30, 0, 0, time.FixedZone("UTC-5", -5*3600))
			l := newLogger("late")
			Expect(l.LogFilePath()).To(HaveSuffix("late-2026-10-15.log"))
		})

		It("should normalize characters that are unsafe in file names", func() {
			l := newLogger("Checkout: step/one")
			Expect(filepath.Base(l.LogFilePath())).To(Equal("Checkout- step-one-2026-10-14.log"))
		})

		It("should fall back to a general log", func() {
			l := newLogger("")
			Expect(l.TestName()).To(Equal(logger.DefaultTestName))
			Expect(filepath.Base(l.LogFilePath())).To(Equal("general-2026-10-14.log"))
		})

		It("should not fail or touch files when the directory exists", func() {
			Expect(fs.MkdirAll("logs", 0o755)).To(Succeed())
			existing := filepath.Join("logs", "other-2026-10-13.log")
			Expect(afero.WriteFile(fs, existing, []byte("kept\n"), 0o644)).To(Succeed())

			newLogger("TC-01")
			newLogger("TC-01")

			data, err := afero.ReadFile(fs, existing)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal("kept\n"))
		})

		It("should honour a custom directory", func() {
			l, err := logger.Create("nested",
				logger.WithFs(fs),
				logger.WithDir(filepath.Join("out", "run", "logs")),
				logger.WithConsole(nil),
			)
			Expect(err).NotTo(HaveOccurred())
			Expect(l.LogFilePath()).To(HavePrefix(filepath.Join("out", "run", "logs")))

			exists, _ := afero.DirExists(fs, filepath.Join("out", "run", "logs"))
			Expect(exists).To(BeTrue())
		})

		It("should surface a directory that cannot be created", func() {
			_, err := logger.Create("ro", logger.WithFs(afero.NewReadOnlyFs(afero.NewMemMapFs())))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Log", func() {
		It("should write the documented line format", func() {
			l := newLogger("format")
			Expect(l.Info("Password entered")).To(Succeed())

			Expect(readLines(l.LogFilePath())).To(Equal([]string{
				"[2026-10-14T09:47:12.345Z] [INFO] Password entered",
			}))
		})

		It("should append the JSON payload when data is provided", func() {
			l := newLogger("payload")
			Expect(l.Info("Username entered", map[string]string{"username": "standard_user"})).To(Succeed())

			lines := readLines(l.LogFilePath())
			Expect(lines[0]).To(HaveSuffix(` - {"username":"standard_user"}`))
		})

		It("should not add a suffix for a nil payload", func() {
			l := newLogger("nil-payload")
			Expect(l.Warn("no data", nil)).To(Succeed())
			Expect(readLines(l.LogFilePath())[0]).NotTo(ContainSubstring(" - "))
		})

		It("should encode several payload values as an array", func() {
			l := newLogger("multi")
			Expect(l.Debug("values", 1, "two")).To(Succeed())
			Expect(readLines(l.LogFilePath())[0]).To(HaveSuffix(` - [1,"two"]`))
		})

		It("should keep HTML characters readable", func() {
			l := newLogger("html")
			Expect(l.Info("markup", "<b>&</b>")).To(Succeed())
			Expect(readLines(l.LogFilePath())[0]).To(HaveSuffix(` - "<b>&</b>"`))
		})

		It("should keep HTML characters readable inside objects", func() {
			l := newLogger("html-object")
			Expect(l.Info("query", map[string]string{"q": "a<b && c>d"})).To(Succeed())
			Expect(readLines(l.LogFilePath())[0]).To(HaveSuffix(` - {"q":"a<b && c>d"}`))
		})

		It("should render errors as their message", func() {
			l := newLogger("error")
			Expect(l.Error("Test failed", errors.New("element not visible"))).To(Succeed())
			Expect(readLines(l.LogFilePath())[0]).To(Equal(
				`[2026-10-14T09:47:12.345Z] [ERROR] Test failed - "element not visible"`,
			))
		})

		It("should fall back to a string for values JSON cannot encode", func() {
			l := newLogger("chan")
			Expect(l.Info("channel", make(chan int))).To(Succeed())
			Expect(readLines(l.LogFilePath())[0]).To(MatchRegexp(` - "0x[0-9a-f]+"$`))
		})

		It("should echo the same line to the console", func() {
			l := newLogger("echo")
			Expect(l.Success("done")).To(Succeed())

			data, _ := afero.ReadFile(fs, l.LogFilePath())
			Expect(console.String()).To(Equal(string(data)))
		})

		It("should keep N calls as N lines in call order", func() {
			l := newLogger("order")
			for i := 0; i < 25; i++ {
				Expect(l.Info(fmt.Sprintf("entry %d", i))).To(Succeed())
			}

			lines := readLines(l.LogFilePath())
			Expect(lines).To(HaveLen(25))
			for i, line := range lines {
				Expect(line).To(HaveSuffix(fmt.Sprintf("entry %d", i)))
			}
		})

		It("should share one file between loggers of the same test and day", func() {
			first := newLogger("shared")
			Expect(first.Info("first")).To(Succeed())
			second := newLogger("shared")
			Expect(second.Info("second")).To(Succeed())

			Expect(second.LogFilePath()).To(Equal(first.LogFilePath()))
			Expect(readLines(first.LogFilePath())).To(HaveLen(2))
		})

		It("should not interleave concurrent writers", func() {
			l := newLogger("concurrent")
			l2 := newLogger("concurrent")

			var wg sync.WaitGroup
			for w := 0; w < 8; w++ {
				wg.Add(1)
				go func(w int) {
					defer GinkgoRecover()
					defer wg.Done()
					target := l
					if w%2 == 1 {
						target = l2
					}
					for i := 0; i < 50; i++ {
						Expect(target.Info(fmt.Sprintf("writer-%d line-%d", w, i))).To(Succeed())
					}
				}(w)
			}
			wg.Wait()

			lines := readLines(l.LogFilePath())
			Expect(lines).To(HaveLen(400))
			for _, line := range lines {
				Expect(line).To(MatchRegexp(`^\[[^\]]+\] \[INFO\] writer-\d line-\d+$`))
			}
		})

		It("should propagate write failures and skip the echo", func() {
			base := afero.NewMemMapFs()
			Expect(base.MkdirAll("logs", 0o755)).To(Succeed())

			l, err := logger.Create("readonly",
				logger.WithFs(afero.NewReadOnlyFs(base)),
				logger.WithConsole(console),
			)
			Expect(err).NotTo(HaveOccurred())

			Expect(l.Info("lost?")).To(MatchError(ContainSubstring("open log file")))
			Expect(console.Len()).To(BeZero())
		})

		It("should write to the real file system by default", func() {
			dir := GinkgoT().TempDir()
			l, err := logger.Create("os", logger.WithDir(dir), logger.WithConsole(nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(l.Info("on disk")).To(Succeed())

			data, err := os.ReadFile(l.LogFilePath())
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring("[INFO] on disk"))
		})
	})

	Describe("lifecycle helpers", func() {
		It("should format steps", func() {
			l := newLogger("steps")
			Expect(l.Step(1, "Navigating to login page")).To(Succeed())
			Expect(l.Step(1, "Repeated number is fine")).To(Succeed())

			lines := readLines(l.LogFilePath())
			Expect(lines[0]).To(HaveSuffix("[STEP] [Step 1] Navigating to login page"))
			Expect(lines[1]).To(HaveSuffix("[STEP] [Step 1] Repeated number is fine"))
		})

		It("should frame a test with start and end banners", func() {
			l := newLogger("banners")
			Expect(l.TestStart("Login with valid credentials")).To(Succeed())
			Expect(l.TestEnd("TC-01-login-valid", logger.StatusPassed)).To(Succeed())
			Expect(l.TestEnd("TC-02-login-invalid", logger.StatusFailed)).To(Succeed())

			lines := readLines(l.LogFilePath())
			Expect(lines[0]).To(HaveSuffix("[TEST] ========== TEST START: Login with valid credentials =========="))
			Expect(lines[1]).To(HaveSuffix("[TEST] ========== TEST END: TC-01-login-valid - PASSED =========="))
			Expect(lines[2]).To(HaveSuffix("[TEST] ========== TEST END: TC-02-login-invalid - FAILED =========="))
		})
	})
})

var _ = Describe("NewSlog", func() {
	It("should default to info for an invalid level", func() {
		log := logger.NewSlog(&bytes.Buffer{}, "invalid", "dev")
		Expect(log.Enabled(context.Background(), slog.LevelInfo)).To(BeTrue())
		Expect(log.Enabled(context.Background(), slog.LevelDebug)).To(BeFalse())
	})

	It("should respect debug level", func() {
		log := logger.NewSlog(&bytes.Buffer{}, "debug", "dev")
		Expect(log.Enabled(context.Background(), slog.LevelDebug)).To(BeTrue())
	})

	It("should respect error level", func() {
		log := logger.NewSlog(&bytes.Buffer{}, "error", "dev")
		Expect(log.Enabled(context.Background(), slog.LevelWarn)).To(BeFalse())
		Expect(log.Enabled(context.Background(), slog.LevelError)).To(BeTrue())
	})

	It("should write JSON in prod", func() {
		buf := &bytes.Buffer{}
		logger.NewSlog(buf, "info", "prod").Info("hello")
		Expect(buf.String()).To(HavePrefix("{"))
		Expect(buf.String()).To(ContainSubstring(`"environment":"prod"`))
	})

	It("should write text elsewhere", func() {
		buf := &bytes.Buffer{}
		logger.NewSlog(buf, "info", "dev").Info("hello")
		Expect(buf.String()).To(ContainSubstring("msg=hello"))
		Expect(buf.String()).To(ContainSubstring("environment=dev"))
	})
})

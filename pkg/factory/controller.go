package factory

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"appfactory/pkg/config"
	"appfactory/pkg/runner"
	"appfactory/pkg/types"
)

// NoSavedApps is shown in the apps drop-down when the repository is empty.
const NoSavedApps = "No saved apps"

const exportExt = ".py"

type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Repository interface {
	List() ([]string, error)
	Save(name, prompt, sourceCode string) error
	Load(name string) (types.SavedApp, error)
}

type Launcher interface {
	Run(sourceCode string) (runner.Launch, error)
}

type Deps struct {
	Settings  *config.Settings
	LLM       Completer
	Apps      Repository
	Runner    Launcher
	Clipboard Clipboard
}

// Controller owns the session buffers and performs one component call per
// user action. Actions are not serialized against each other.
type Controller struct {
	deps Deps

	mu     sync.Mutex
	prompt string
	code   string
	output string
	status types.Status

	onStatus func(types.Status)
}

func New(deps Deps) *Controller {
	if deps.Clipboard == nil {
		deps.Clipboard = systemClipboard{}
	}
	return &Controller{
		deps:   deps,
		status: types.Status{State: types.Idle, Text: "Idle", Color: "gray"},
	}
}

// OnStatus registers the single status observer. It is called synchronously
// from whichever goroutine runs the action.
func (c *Controller) OnStatus(fn func(types.Status)) {
	c.mu.Lock()
	c.onStatus = fn
	c.mu.Unlock()
}

func (c *Controller) Prompt() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prompt
}

func (c *Controller) Code() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.code
}

func (c *Controller) Output() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.output
}

func (c *Controller) Status() types.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Controller) SetPrompt(text string) {
	c.mu.Lock()
	c.prompt = text
	c.mu.Unlock()
}

func (c *Controller) SetCode(text string) {
	c.mu.Lock()
	c.code = text
	c.mu.Unlock()
}

// Generate sends the prompt to the model and replaces the code buffer with
// the completion, fence lines removed.
func (c *Controller) Generate(ctx context.Context) error {
	c.mu.Lock()
	c.output = ""
	prompt := strings.TrimSpace(c.prompt)
	c.mu.Unlock()

	c.setStatus(types.InProgress, "Generating...", "orange")
	log.Printf("generate: %d prompt chars", len(prompt))

	code, err := c.deps.LLM.Complete(ctx, prompt)
	if err != nil {
		log.Printf("generate: %v", err)
		c.fail(err)
		return err
	}
	if startsWithFence(code) {
		code = StripFences(code)
	}

	c.SetCode(code)
	c.setStatus(types.Done, "Done", "green")
	return nil
}

// Run launches the code buffer. The status reports the app as running even
// when the launch fails; launch errors only reach the log.
func (c *Controller) Run() (runner.Launch, error) {
	launch, err := c.deps.Runner.Run(c.Code())
	if err != nil {
		log.Printf("run: %v", err)
	} else {
		log.Printf("run: started pid %d from %s", launch.PID, launch.Path)
	}
	c.setStatus(types.Done, "App Running", "green")
	return launch, err
}

// Save stores the prompt and code buffers under name. An empty name cancels.
func (c *Controller) Save(name string) error {
	if name == "" {
		return nil
	}
	c.mu.Lock()
	prompt, code := c.prompt, c.code
	c.mu.Unlock()

	if err := c.deps.Apps.Save(name, prompt, code); err != nil {
		log.Printf("save %q: %v", name, err)
		c.fail(err)
		return err
	}
	log.Printf("save %q", name)
	c.setStatus(types.Done, "Saved", "green")
	return nil
}

// Apps lists saved app names, or the NoSavedApps placeholder when empty.
func (c *Controller) Apps() ([]string, error) {
	names, err := c.deps.Apps.List()
	if err != nil {
		c.fail(err)
		return []string{NoSavedApps}, err
	}
	if len(names) == 0 {
		return []string{NoSavedApps}, nil
	}
	return names, nil
}

// Load overwrites both buffers with the named app.
func (c *Controller) Load(name string) error {
	if name == "" || name == NoSavedApps {
		return nil
	}
	app, err := c.deps.Apps.Load(name)
	if err != nil {
		log.Printf("load %q: %v", name, err)
		c.fail(err)
		return err
	}

	c.mu.Lock()
	c.code = app.SourceCode
	c.prompt = app.Prompt
	c.mu.Unlock()

	log.Printf("load %q", name)
	c.setStatus(types.Done, "Loaded "+name, "green")
	return nil
}

// Export writes the code buffer to path, adding .py when path has no
// extension. It returns the path actually written.
func (c *Controller) Export(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if filepath.Ext(path) == "" {
		path += exportExt
	}

	if err := os.WriteFile(path, []byte(c.Code()), 0o644); err != nil {
		err = fmt.Errorf("export: %w", err)
		log.Printf("%v", err)
		c.fail(err)
		return "", err
	}
	log.Printf("export %s", path)
	c.setStatus(types.Done, "Exported "+filepath.Base(path), "green")
	return path, nil
}

// Copy puts the code buffer on the system clipboard.
func (c *Controller) Copy() error {
	code := c.Code()
	if code == "" {
		return nil
	}
	if err := c.deps.Clipboard.WriteAll(code); err != nil {
		err = fmt.Errorf("copy: %w", err)
		c.fail(err)
		return err
	}
	c.setStatus(types.Done, "Copied", "green")
	return nil
}

// ApplySettings persists cfg; subscribers of the settings object pick up the
// new key and appearance.
func (c *Controller) ApplySettings(cfg config.Config) error {
	if c.deps.Settings == nil {
		return errors.New("settings unavailable")
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if err := c.deps.Settings.Update(cfg); err != nil {
		log.Printf("settings: %v", err)
		c.fail(err)
		return err
	}
	log.Printf("settings: appearance=%s key set=%t", cfg.Appearance, cfg.APIKey != "")
	return nil
}

func (c *Controller) fail(err error) {
	c.mu.Lock()
	c.output = err.Error()
	c.mu.Unlock()
	c.setStatus(types.Failed, "Error", "red")
}

func (c *Controller) setStatus(state types.State, text, color string) {
	st := types.Status{State: state, Text: text, Color: color}

	c.mu.Lock()
	c.status = st
	fn := c.onStatus
	c.mu.Unlock()

	if fn != nil {
		fn(st)
	}
}

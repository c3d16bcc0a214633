package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/AlsoSylv/synth-launcher-sub000/internal/bridge"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/logger"
)

type InstallMonitor struct {
	bridge  *bridge.Bridge
	version string
	program *tea.Program
}

func NewInstallMonitor(b *bridge.Bridge, version string) *InstallMonitor {
	return &InstallMonitor{
		bridge:  b,
		version: version,
	}
}

func (im *InstallMonitor) Start() error {
	model := NewModel(im.version)
	im.program = tea.NewProgram(model, tea.WithAltScreen())

	return nil
}

func (im *InstallMonitor) Stop() {
	if im.program != nil {
		im.program.Quit()
	}
}

func (im *InstallMonitor) AddLog(message string) {
	if im.program != nil {
		im.program.Send(LogMessage{Message: message})
	}
}

func (im *InstallMonitor) report(u StageUpdate) {
	if im.program == nil {
		return
	}
	im.program.Send(u)

	switch u.State {
	case StateDone:
		im.AddLog(fmt.Sprintf("✅ %s finished", u.Kind))
	case StateFailed:
		im.AddLog(fmt.Sprintf("❌ %s failed: %v", u.Kind, u.Error))
	}
}

// Run installs the version while the TUI renders progress. Quitting the TUI
// cancels the outstanding tasks.
func (im *InstallMonitor) Run(ctx context.Context) error {
	if im.program == nil {
		if err := im.Start(); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		err := RunInstall(ctx, im.bridge, im.version, im.report)
		if err != nil {
			logger.Error("Install failed: %v", err)
		}
		im.program.Send(InstallFinished{Err: err})
		errCh <- err
	}()

	if _, err := im.program.Run(); err != nil {
		cancel()
		<-errCh
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	cancel()
	return <-errCh
}

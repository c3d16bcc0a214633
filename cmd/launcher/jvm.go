package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AlsoSylv/synth-launcher-sub000/internal/bridge"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/config"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/logger"
)

func newJVMCmd(cfg *config.Config) *cobra.Command {
	jvmCmd := &cobra.Command{
		Use:   "jvm",
		Short: "Manage the Java runtimes the game can be started with",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List registered runtimes",
		Run: func(cmd *cobra.Command, args []string) {
			a := mustApp(cfg)
			defer a.Close()

			for i, jvm := range a.bridge.JVMs() {
				fmt.Printf("%3d  %-24s %s %s\n", i, jvm.Name, jvm.Path, strings.Join(jvm.Args, " "))
			}
		},
	}

	var jvmArgs, envArgs []string
	addCmd := &cobra.Command{
		Use:   "add <java-path>",
		Short: "Register a java executable",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			a := mustApp(cfg)
			defer a.Close()

			res := a.bridge.AddJVM(args[0], jvmArgs, envArgs)
			if res.Code != bridge.Success {
				logger.Fatal("Failed to register %s (%s): %s", args[0], res.Code, a.take(res.Error))
			}
			i := a.bridge.JVMCount() - 1
			fmt.Printf("%3d  %s\n", i, a.bridge.JVM(i).Name)
		},
	}
	addCmd.Flags().StringArrayVarP(&jvmArgs, "arg", "a", nil, "Extra JVM argument (repeatable)")
	addCmd.Flags().StringArrayVarP(&envArgs, "env", "e", nil, "Environment entry KEY=VALUE for the game (repeatable)")

	removeCmd := &cobra.Command{
		Use:   "remove <index>",
		Short: "Unregister a runtime",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			i, err := strconv.Atoi(args[0])
			if err != nil {
				logger.Fatal("Invalid runtime index %q", args[0])
			}

			a := mustApp(cfg)
			defer a.Close()

			if i < 0 || i >= a.bridge.JVMCount() {
				logger.Fatal("No runtime at index %d (%d registered)", i, a.bridge.JVMCount())
			}
			if res := a.bridge.RemoveJVM(i); res.Code != bridge.Success {
				logger.Fatal("Failed to remove runtime %d: %s", i, a.take(res.Error))
			}
		},
	}

	jvmCmd.AddCommand(listCmd, addCmd, removeCmd)
	return jvmCmd
}

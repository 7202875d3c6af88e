package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"gamesched/internal/ctl"
	"gamesched/internal/sched"
)

var (
	taskID   uint64 // --task for add/remove/pin/unpin
	priority string // --priority for add
	cpuList  string // --cpus for isolate
	clearIso bool   // --clear for isolate
	pinCPU   int    // --cpu for pin
)

// parseCPUList parses a comma-separated list of CPU ids, e.g. "2,3".
func parseCPUList(s string) ([]int, error) {
	var cpus []int
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		cpu, err := strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("bad cpu id %q", tok)
		}
		cpus = append(cpus, cpu)
	}
	if len(cpus) == 0 {
		return nil, fmt.Errorf("empty cpu list %q", s)
	}
	return cpus, nil
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a game task with a priority class (render or other)",
	Run: func(cmd *cobra.Command, args []string) {
		if taskID == 0 || priority == "" {
			logrus.Fatal("usage: gamesched add --task ID --priority render|other")
		}
		if _, err := ctl.Do(sockPath, ctl.Request{Op: "add", Task: sched.TaskID(taskID), Class: priority}); err != nil {
			logrus.Fatal(err)
		}
		fmt.Printf("Added task %d with priority '%s'\n", taskID, priority)
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove",
	Short: "Deregister a game task (also drops its pin)",
	Run: func(cmd *cobra.Command, args []string) {
		if taskID == 0 {
			logrus.Fatal("usage: gamesched remove --task ID")
		}
		if _, err := ctl.Do(sockPath, ctl.Request{Op: "remove", Task: sched.TaskID(taskID)}); err != nil {
			logrus.Fatal(err)
		}
		fmt.Printf("Removed task %d\n", taskID)
	},
}

var isolateCmd = &cobra.Command{
	Use:   "isolate",
	Short: "Isolate CPUs for game tasks, or clear isolation",
	Run: func(cmd *cobra.Command, args []string) {
		if clearIso {
			if _, err := ctl.Do(sockPath, ctl.Request{Op: "clear-isolation"}); err != nil {
				logrus.Fatal(err)
			}
			fmt.Println("Cleared CPU isolation")
			return
		}
		if cpuList == "" {
			logrus.Fatal("usage: gamesched isolate --cpus CPU_LIST | --clear")
		}
		cpus, err := parseCPUList(cpuList)
		if err != nil {
			logrus.Fatal(err)
		}
		if _, err := ctl.Do(sockPath, ctl.Request{Op: "isolate", CPUs: cpus}); err != nil {
			logrus.Fatal(err)
		}
		fmt.Printf("Isolated CPUs: %s\n", cpuList)
	},
}

var pinCmd = &cobra.Command{
	Use:   "pin",
	Short: "Pin a task to a CPU",
	Run: func(cmd *cobra.Command, args []string) {
		if taskID == 0 || pinCPU < 0 {
			logrus.Fatal("usage: gamesched pin --task ID --cpu CPU")
		}
		if _, err := ctl.Do(sockPath, ctl.Request{Op: "pin", Task: sched.TaskID(taskID), CPU: pinCPU}); err != nil {
			logrus.Fatal(err)
		}
		fmt.Printf("Pinned task %d to CPU %d\n", taskID, pinCPU)
	},
}

var unpinCmd = &cobra.Command{
	Use:   "unpin",
	Short: "Remove a task's CPU pin",
	Run: func(cmd *cobra.Command, args []string) {
		if taskID == 0 {
			logrus.Fatal("usage: gamesched unpin --task ID")
		}
		if _, err := ctl.Do(sockPath, ctl.Request{Op: "unpin", Task: sched.TaskID(taskID)}); err != nil {
			logrus.Fatal(err)
		}
		fmt.Printf("Unpinned task %d\n", taskID)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current configuration",
	Run: func(cmd *cobra.Command, args []string) {
		resp, err := ctl.Do(sockPath, ctl.Request{Op: "status"})
		if err != nil {
			logrus.Fatal(err)
		}
		printStatus(resp.Status)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show dispatch counters",
	Run: func(cmd *cobra.Command, args []string) {
		resp, err := ctl.Do(sockPath, ctl.Request{Op: "stats"})
		if err != nil {
			logrus.Fatal(err)
		}
		sn := resp.Stats
		fmt.Printf("game=%d normal=%d isolated_redirects=%d\n",
			sn.PriorityDispatches, sn.NormalDispatches, sn.IsolationRedirects)
	},
}

func printStatus(st *sched.Status) {
	fmt.Println("=== GameSched Status ===")
	fmt.Println()
	fmt.Println("Game Tasks:")
	for _, e := range st.Tasks {
		fmt.Printf("  task %d: priority=%s", e.ID, e.Class)
		if e.PinnedCPU >= 0 {
			fmt.Printf(" (pinned to CPU %d)", e.PinnedCPU)
		}
		fmt.Println()
	}

	fmt.Print("\nIsolated CPUs: ")
	if len(st.Isolated) == 0 {
		fmt.Println("(none)")
		return
	}
	parts := make([]string, len(st.Isolated))
	for i, cpu := range st.Isolated {
		parts[i] = strconv.Itoa(cpu)
	}
	fmt.Println(strings.Join(parts, ","))
}

func init() {
	addCmd.Flags().Uint64Var(&taskID, "task", 0, "task id")
	addCmd.Flags().StringVar(&priority, "priority", "", "priority class: render or other")
	removeCmd.Flags().Uint64Var(&taskID, "task", 0, "task id")
	isolateCmd.Flags().StringVar(&cpuList, "cpus", "", "comma-separated CPU ids, e.g. 2,3")
	isolateCmd.Flags().BoolVar(&clearIso, "clear", false, "clear all CPU isolation")
	pinCmd.Flags().Uint64Var(&taskID, "task", 0, "task id")
	pinCmd.Flags().IntVar(&pinCPU, "cpu", -1, "cpu id")
	unpinCmd.Flags().Uint64Var(&taskID, "task", 0, "task id")

	rootCmd.AddCommand(addCmd, removeCmd, isolateCmd, pinCmd, unpinCmd, statusCmd, statsCmd)
}

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/felixgeelhaar/matekkaland/internal/config"
)

var healthClient = &http.Client{Timeout: 2 * time.Second}

// cmdStart starts the daemon in the background
func cmdStart() error {
	dir, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	addr := daemonAddr(cfg)

	if isRunning(addr) {
		fmt.Println("✓ Daemon is already running")
		return nil
	}

	daemonPath, err := findDaemonBinary()
	if err != nil {
		return fmt.Errorf("find daemon binary: %w", err)
	}

	cmd := exec.Command(daemonPath)
	cmd.Dir = dir
	cmd.Stdout = nil
	cmd.Stderr = nil
	configureDaemonProcess(cmd)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	fmt.Print("Starting daemon...")
	for i := 0; i < 30; i++ {
		time.Sleep(100 * time.Millisecond)
		if isRunning(addr) {
			fmt.Println(" ✓")
			fmt.Printf("Daemon running at %s\n", addr)
			return nil
		}
		fmt.Print(".")
	}

	fmt.Println(" ✗")
	return fmt.Errorf("daemon failed to start (check logs with 'matek logs')")
}

// cmdStop stops the daemon
func cmdStop() error {
	dir, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	addr := daemonAddr(cfg)

	if !isRunning(addr) {
		fmt.Println("Daemon is not running")
		return nil
	}

	data, err := os.ReadFile(filepath.Join(dir, pidFile))
	if err != nil {
		return fmt.Errorf("read PID file: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return fmt.Errorf("parse PID: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find process: %w", err)
	}

	fmt.Print("Stopping daemon...")
	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("send signal: %w", err)
	}

	for i := 0; i < 50; i++ {
		time.Sleep(100 * time.Millisecond)
		if !isRunning(addr) {
			fmt.Println(" ✓")
			return nil
		}
		fmt.Print(".")
	}

	fmt.Println(" ✗")
	return fmt.Errorf("daemon did not stop gracefully")
}

// cmdStatus shows daemon status
func cmdStatus() error {
	_, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	addr := daemonAddr(cfg)

	if !isRunning(addr) {
		fmt.Println("Status: stopped")
		return nil
	}

	resp, err := healthClient.Get(addr + "/v1/status")
	if err != nil {
		return fmt.Errorf("get status: %w", err)
	}
	defer resp.Body.Close()

	var status struct {
		Status         string   `json:"status"`
		Version        string   `json:"version"`
		Screen         string   `json:"screen"`
		Providers      []string `json:"llm_providers"`
		StorageBackend string   `json:"storage_backend"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return fmt.Errorf("parse status: %w", err)
	}

	providers := "none (bundled questions)"
	if len(status.Providers) > 0 {
		providers = strings.Join(status.Providers, ", ")
	}

	fmt.Printf("Status:    %s\n", status.Status)
	fmt.Printf("Version:   %s\n", status.Version)
	fmt.Printf("Screen:    %s\n", status.Screen)
	fmt.Printf("Storage:   %s\n", status.StorageBackend)
	fmt.Printf("Providers: %s\n", providers)
	fmt.Printf("Address:   %s\n", addr)

	return nil
}

// cmdLogs prints the tail of the daemon log
func cmdLogs() error {
	dir, err := config.Dir()
	if err != nil {
		return err
	}

	logPath := filepath.Join(dir, "logs", logFile)
	file, err := os.Open(logPath)
	if os.IsNotExist(err) {
		fmt.Println("No log file found. Start the daemon first.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat log file: %w", err)
	}
	offset := max(info.Size()-4096, 0)
	if _, err := file.Seek(offset, 0); err != nil {
		return fmt.Errorf("seek log file: %w", err)
	}

	reader := bufio.NewReader(file)
	if offset > 0 {
		// skip the partial first line
		_, _ = reader.ReadString('\n')
	}

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		fmt.Println(scanner.Text())
	}
	return scanner.Err()
}

// isRunning checks the daemon health endpoint
func isRunning(addr string) bool {
	resp, err := healthClient.Get(addr + "/v1/health")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// findDaemonBinary locates the matekd binary
func findDaemonBinary() (string, error) {
	if path, err := exec.LookPath("matekd"); err == nil {
		return path, nil
	}

	if self, err := os.Executable(); err == nil {
		path := filepath.Join(filepath.Dir(self), "matekd")
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	for _, path := range []string{
		"/usr/local/bin/matekd",
		"./matekd",
		"./cmd/matekd/matekd",
	} {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("matekd binary not found (build with 'go build ./cmd/matekd')")
}

// requireStopped refuses to touch the profile while the daemon holds it.
func requireStopped(cfg *config.LocalConfig) error {
	if isRunning(daemonAddr(cfg)) {
		return fmt.Errorf("the daemon owns the player profile while running (run 'matek stop' first)")
	}
	return nil
}

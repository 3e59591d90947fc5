package bus

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

const SockName = "control.sock"
const PidName = "captrans.pid"
const ProtoVer = "0.1"

// RuntimeDirEnv overrides the directory holding the socket and pid file.
const RuntimeDirEnv = "CAPTRANS_RUNTIME_DIR"

const (
	CmdStatus  byte = 's'
	CmdVersion byte = 'v'
	CmdQuit    byte = 'q'
)

const commandTimeout = 3 * time.Second

func runtimeDir() (string, error) {
	if dir := os.Getenv(RuntimeDirEnv); dir != "" {
		return dir, nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "captrans"), nil
}

// ~/.cache/captrans/control.sock
func SockPath() (string, error) {
	dir, err := runtimeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SockName), nil
}

// ~/.cache/captrans/captrans.pid
func PidPath() (string, error) {
	dir, err := runtimeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, PidName), nil
}

func Listen() (net.Listener, error) {
	sp, err := SockPath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(sp), 0o700); err != nil {
		return nil, err
	}
	_ = os.Remove(sp) // stale socket from last run
	return net.Listen("unix", sp)
}

func Dial() (net.Conn, error) {
	sp, err := SockPath()
	if err != nil {
		return nil, err
	}
	return net.DialTimeout("unix", sp, commandTimeout)
}

// SendCommand sends a one-byte command and returns the daemon's reply line
// without its trailing newline.
func SendCommand(cmd byte) (string, error) {
	c, err := Dial()
	if err != nil {
		return "", err
	}
	defer c.Close()

	_ = c.SetDeadline(time.Now().Add(commandTimeout))
	if _, err := c.Write([]byte{cmd, '\n'}); err != nil {
		return "", err
	}

	resp, err := bufio.NewReader(c).ReadString('\n')
	if err != nil && resp == "" {
		return "", err
	}
	return strings.TrimSpace(resp), nil
}

func CheckExistingDaemon() error {
	pidPath, err := PidPath()
	if err != nil {
		return err
	}

	pidData, err := os.ReadFile(pidPath)
	if os.IsNotExist(err) {
		return nil // no existing daemon
	}
	if err != nil {
		return err
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(pidData)))
	if err != nil {
		return nil // invalid pid file, assume stale
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return nil
	}

	// signal 0 only checks that the process exists
	if err := proc.Signal(syscall.Signal(0)); err != nil {
		return nil
	}

	return fmt.Errorf("daemon already running with PID %d", pid)
}

func CreatePidFile() error {
	pidPath, err := PidPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(pidPath), 0o700); err != nil {
		return err
	}

	pid := os.Getpid()
	return os.WriteFile(pidPath, []byte(strconv.Itoa(pid)), 0o600)
}

func RemovePidFile() error {
	pidPath, err := PidPath()
	if err != nil {
		return err
	}
	return os.Remove(pidPath)
}

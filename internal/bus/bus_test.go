package bus

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func useTempRuntimeDir(t *testing.T) string {
	t.Helper()
	// unix socket paths are length limited, keep it short
	dir, err := os.MkdirTemp("", "ct")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	t.Setenv(RuntimeDirEnv, dir)
	return dir
}

func TestPaths(t *testing.T) {
	dir := useTempRuntimeDir(t)

	sp, err := SockPath()
	if err != nil || sp != filepath.Join(dir, SockName) {
		t.Errorf("SockPath() = %q, %v", sp, err)
	}
	pp, err := PidPath()
	if err != nil || pp != filepath.Join(dir, PidName) {
		t.Errorf("PidPath() = %q, %v", pp, err)
	}
}

func TestPidFile(t *testing.T) {
	useTempRuntimeDir(t)

	t.Run("no pid file", func(t *testing.T) {
		if err := CheckExistingDaemon(); err != nil {
			t.Errorf("CheckExistingDaemon() = %v, want nil", err)
		}
	})

	t.Run("own pid is reported as running", func(t *testing.T) {
		if err := CreatePidFile(); err != nil {
			t.Fatalf("CreatePidFile() = %v", err)
		}
		err := CheckExistingDaemon()
		if err == nil || !strings.Contains(err.Error(), strconv.Itoa(os.Getpid())) {
			t.Errorf("CheckExistingDaemon() = %v, want running daemon error", err)
		}
		if err := RemovePidFile(); err != nil {
			t.Errorf("RemovePidFile() = %v", err)
		}
	})

	t.Run("garbage pid file is stale", func(t *testing.T) {
		pp, _ := PidPath()
		if err := os.WriteFile(pp, []byte("not-a-pid"), 0o600); err != nil {
			t.Fatal(err)
		}
		if err := CheckExistingDaemon(); err != nil {
			t.Errorf("CheckExistingDaemon() = %v, want nil", err)
		}
	})
}

func TestSendCommand(t *testing.T) {
	useTempRuntimeDir(t)

	ln, err := Listen()
	if err != nil {
		t.Fatalf("Listen() = %v", err)
	}
	defer ln.Close()

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			line, _ := bufio.NewReader(conn).ReadString('\n')
			switch line[0] {
			case CmdStatus:
				conn.Write([]byte("STATUS running\n"))
			default:
				conn.Write([]byte("ERR unknown\n"))
			}
			conn.Close()
		}
	}()

	resp, err := SendCommand(CmdStatus)
	if err != nil || resp != "STATUS running" {
		t.Errorf("SendCommand(s) = %q, %v", resp, err)
	}
	resp, err = SendCommand('x')
	if err != nil || resp != "ERR unknown" {
		t.Errorf("SendCommand(x) = %q, %v", resp, err)
	}
}

func TestSendCommand_NoDaemon(t *testing.T) {
	useTempRuntimeDir(t)
	if _, err := SendCommand(CmdStatus); err == nil {
		t.Error("SendCommand() should fail without a listener")
	}
}

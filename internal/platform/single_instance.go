package platform

import (
	"bufio"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"
)

// ErrAlreadyRunning indicates another instance already holds the lock.
var ErrAlreadyRunning = errors.New("instance already running")

const activateCommand = "activate"

// InstanceGuard holds the single-instance lock.
type InstanceGuard struct {
	listener net.Listener
	address  string
	appName  string
	wg       sync.WaitGroup
}

// AcquireSingleInstance binds a deterministic localhost port derived from the
// app name. When the port belongs to a running instance it asks that instance
// to activate and returns ErrAlreadyRunning. A port held by anything else is
// reported as a plain error. onActivate runs on a background goroutine each
// time a later launch knocks.
func AcquireSingleInstance(appName string, onActivate func()) (*InstanceGuard, error) {
	address := fmt.Sprintf("127.0.0.1:%d", portFromName(appName))
	listener, err := net.Listen("tcp", address)
	if err != nil {
		if knockErr := knock(address, appName); knockErr != nil {
			slog.Debug("port is not held by a running instance", "address", address, "error", knockErr)
			return nil, fmt.Errorf("single instance lock %s: %w", address, err)
		}
		return nil, ErrAlreadyRunning
	}

	guard := &InstanceGuard{listener: listener, address: address, appName: appName}
	guard.wg.Add(1)
	go guard.serve(onActivate)
	return guard, nil
}

// Release frees the single instance lock.
func (guard *InstanceGuard) Release() error {
	if guard == nil || guard.listener == nil {
		return nil
	}
	err := guard.listener.Close()
	guard.wg.Wait()
	return err
}

// Address returns the bound address.
func (guard *InstanceGuard) Address() string {
	if guard == nil {
		return ""
	}
	return guard.address
}

func (guard *InstanceGuard) serve(onActivate func()) {
	defer guard.wg.Done()
	for {
		conn, err := guard.listener.Accept()
		if err != nil {
			return
		}
		if guard.answer(conn) && onActivate != nil {
			onActivate()
		}
	}
}

// answer acknowledges an activate request with the app name so the caller
// can tell this instance from an unrelated listener.
func (guard *InstanceGuard) answer(conn net.Conn) bool {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(time.Second))
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil || strings.TrimSpace(line) != activateCommand {
		return false
	}
	_, _ = io.WriteString(conn, ackLine(guard.appName))
	return true
}

func knock(address, appName string) error {
	conn, err := net.DialTimeout("tcp", address, time.Second)
	if err != nil {
		return fmt.Errorf("dial running instance: %w", err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(time.Second))
	if _, err := io.WriteString(conn, activateCommand+"\n"); err != nil {
		return fmt.Errorf("send activate: %w", err)
	}
	reply, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return fmt.Errorf("read acknowledgement: %w", err)
	}
	if reply != ackLine(appName) {
		return fmt.Errorf("unexpected acknowledgement %q", strings.TrimSpace(reply))
	}
	return nil
}

func ackLine(appName string) string {
	return "ok " + appName + "\n"
}

func portFromName(appName string) int {
	const (
		minPort = 20000
		maxPort = 39999
	)
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(appName))
	rangeSize := maxPort - minPort + 1
	return minPort + int(hash.Sum32()%uint32(rangeSize))
}

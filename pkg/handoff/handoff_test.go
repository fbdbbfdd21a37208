package handoff

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/ucl.go/pkg/mem"
)

func TestFlag(t *testing.T) {
	var f Flag
	require.False(t, f.IsLocked())
	require.True(t, f.TryAcquire())
	require.True(t, f.IsLocked())
	require.False(t, f.TryAcquire())
	require.True(t, f.IsLocked())
	f.Release()
	require.False(t, f.IsLocked())
	f.Release()
	require.False(t, f.IsLocked())
	require.True(t, f.TryAcquire())
}

func TestFlagSingleHolder(t *testing.T) {
	var f Flag
	var wg sync.WaitGroup
	var lock sync.Mutex
	winners := 0
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if f.TryAcquire() {
				lock.Lock()
				winners++
				lock.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 1, winners)
}

func testMessage(t *testing.T, p *mem.Pool, content string) Message {
	pg := p.AllocatePages(1)
	require.False(t, pg.IsNil())
	n := copy(pg.Bytes(), content)
	return Message{Page: pg, Len: n}
}

func TestMailboxPublishReceive(t *testing.T) {
	p, err := mem.NewPool(256, 32)
	require.NoError(t, err)
	var m Mailbox

	_, ok := m.Receive()
	require.False(t, ok)

	res := m.Publish(func() (Message, bool) {
		return testMessage(t, p, "hello"), true
	})
	require.Equal(t, Published, res)
	require.True(t, m.IsLocked())

	called := false
	res = m.Publish(func() (Message, bool) {
		called = true
		return Message{}, true
	})
	require.Equal(t, Busy, res)
	require.False(t, called, "fill must not run while the consumer holds the mailbox")

	msg, ok := m.Receive()
	require.True(t, ok)
	require.Equal(t, "hello", string(msg.Bytes()))
	_, ok = m.Receive()
	require.False(t, ok, "a message is received once")
	require.True(t, m.IsLocked())

	p.Free(msg.Page)
	m.Release()
	require.False(t, m.IsLocked())
	require.Equal(t, 8, p.FreeBlocks())
}

func TestMailboxNoMemory(t *testing.T) {
	var m Mailbox
	res := m.Publish(func() (Message, bool) { return Message{}, false })
	require.Equal(t, NoMemory, res)
	require.False(t, m.IsLocked())
	_, ok := m.Receive()
	require.False(t, ok)
}

func TestMailboxReleaseKeepsUnreceived(t *testing.T) {
	var m Mailbox
	m.Publish(func() (Message, bool) { return Message{Len: 0}, true })
	m.Release()
	require.True(t, m.IsLocked())
	_, ok := m.Receive()
	require.True(t, ok)
	m.Release()
	require.False(t, m.IsLocked())
}

func TestMailboxConcurrent(t *testing.T) {
	p, err := mem.NewPool(1024, 32)
	require.NoError(t, err)
	var m Mailbox
	const total = 200
	done := make(chan struct{})
	received := 0
	go func() {
		defer close(done)
		for received < total {
			msg, ok := m.Receive()
			if !ok {
				continue
			}
			if string(msg.Bytes()) == "frame" {
				received++
			}
			p.Free(msg.Page)
			m.Release()
		}
	}()
	published := 0
	for published < total {
		if m.Publish(func() (Message, bool) {
			return testMessage(t, p, "frame"), true
		}) == Published {
			published++
		}
	}
	<-done
	require.Equal(t, total, received)
	require.Equal(t, 32, p.FreeBlocks())
}

func TestPublishResultString(t *testing.T) {
	require.Equal(t, "published", Published.String())
	require.Equal(t, "busy", Busy.String())
	require.Equal(t, "no memory", NoMemory.String())
	require.Equal(t, "unknown", PublishResult(9).String())
}

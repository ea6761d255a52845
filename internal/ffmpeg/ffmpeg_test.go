package ffmpeg

import (
	"context"
	"fmt"
	"testing"
	"time"

	assert_ "github.com/stretchr/testify/assert"
)

type fakeCommand struct {
	output []byte
	err    error
}

func (c fakeCommand) CombinedOutput() ([]byte, error) {
	return c.output, c.err
}

type fakeExecutor struct {
	output []byte
	err    error
	names  []string
	args   [][]string
}

func (e *fakeExecutor) Command(ctx context.Context, name string, arg ...string) Command {
	e.names = append(e.names, name)
	e.args = append(e.args, arg)
	return fakeCommand{output: e.output, err: e.err}
}

func TestDuration(t *testing.T) {
	assert := assert_.New(t)

	executor := &fakeExecutor{output: []byte("123.456\n")}
	r := NewRunner("ffmpeg", "ffprobe", executor)
	d, err := r.Duration(context.Background(), "in.mp4")
	assert.NoError(err)
	assert.Equal(123456*time.Millisecond, d)
	assert.Equal([]string{"-v", "error", "-show_entries", "format=duration", "-of", "csv=p=0", "in.mp4"}, executor.args[0])
}

func TestDurationErrors(t *testing.T) {
	assert := assert_.New(t)

	r := NewRunner("ffmpeg", "ffprobe", &fakeExecutor{err: fmt.Errorf("exit status 1")})
	_, err := r.Duration(context.Background(), "in.mp4")
	assert.Error(err)

	r = NewRunner("ffmpeg", "ffprobe", &fakeExecutor{output: []byte("N/A\n")})
	_, err = r.Duration(context.Background(), "in.mp4")
	assert.Error(err)
}

func TestSliceArgs(t *testing.T) {
	assert := assert_.New(t)

	executor := &fakeExecutor{}
	r := NewRunner("ffmpeg", "ffprobe", executor)
	err := r.Slice(context.Background(), "in.mp4", 90*time.Second, 30*time.Second, "out.mp4")
	assert.NoError(err)
	args := executor.args[0]
	assert.Contains(args, "90.000")
	assert.Contains(args, "30.000")
	assert.Contains(args, videoCodec)
	assert.Equal("out.mp4", args[len(args)-1])
}

func TestMergeArgs(t *testing.T) {
	assert := assert_.New(t)

	executor := &fakeExecutor{}
	r := NewRunner("ffmpeg", "ffprobe", executor)
	err := r.Merge(context.Background(), "v.mp4", "a.m4a", "out.mp4")
	assert.NoError(err)
	args := executor.args[0]
	assert.Contains(args, "v.mp4")
	assert.Contains(args, "a.m4a")
	assert.Equal("out.mp4", args[len(args)-1])
}

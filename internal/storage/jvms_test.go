package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJVMsKeepInsertionOrder(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	for _, name := range []string{"Temurin 17", "Azul 8", "Oracle 21"} {
		require.NoError(t, l.AddJVM(ctx, &JVM{Name: name, Path: "/opt/" + name + "/bin/java"}))
	}

	jvms, err := l.ListJVMs(ctx)
	require.NoError(t, err)
	require.Len(t, jvms, 3)
	assert.Equal(t, "Temurin 17", jvms[0].Name)
	assert.Equal(t, "Azul 8", jvms[1].Name)
	assert.Equal(t, "Oracle 21", jvms[2].Name)
	assert.NotEmpty(t, jvms[0].ID)
	assert.False(t, jvms[0].AddedAt.IsZero())
}

func TestJVMArgsRoundTrip(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	jvm := &JVM{Name: "Temurin 17", Path: "/usr/bin/java", Args: []string{"-Xmx4G", "-XX:+UseG1GC"}, Env: []string{"MESA_GL_VERSION_OVERRIDE=4.5"}}
	require.NoError(t, l.AddJVM(ctx, jvm))
	require.NoError(t, l.AddJVM(ctx, &JVM{Name: "bare", Path: "java"}))

	jvms, err := l.ListJVMs(ctx)
	require.NoError(t, err)
	require.Len(t, jvms, 2)
	assert.Equal(t, jvm.ID, jvms[0].ID)
	assert.Equal(t, jvm.Args, jvms[0].Args)
	assert.Equal(t, jvm.Env, jvms[0].Env)
	assert.Empty(t, jvms[1].Args)
	assert.Empty(t, jvms[1].Env)
}

func TestRemoveJVM(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	first := &JVM{Name: "first", Path: "a"}
	second := &JVM{Name: "second", Path: "b"}
	require.NoError(t, l.AddJVM(ctx, first))
	require.NoError(t, l.AddJVM(ctx, second))

	require.NoError(t, l.RemoveJVM(ctx, first.ID))
	assert.ErrorIs(t, l.RemoveJVM(ctx, first.ID), ErrJVMNotFound)

	jvms, err := l.ListJVMs(ctx)
	require.NoError(t, err)
	require.Len(t, jvms, 1)
	assert.Equal(t, second.ID, jvms[0].ID)
}

func TestJVMsSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "launcher.db")
	l, err := NewSQLiteLedger(path)
	require.NoError(t, err)
	require.NoError(t, l.AddJVM(context.Background(), &JVM{Name: "Temurin 17", Path: "/usr/bin/java"}))
	require.NoError(t, l.Close())

	l, err = NewSQLiteLedger(path)
	require.NoError(t, err)
	defer l.Close()

	jvms, err := l.ListJVMs(context.Background())
	require.NoError(t, err)
	require.Len(t, jvms, 1)
	assert.Equal(t, "/usr/bin/java", jvms[0].Path)
}

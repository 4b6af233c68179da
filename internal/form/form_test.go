package form

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopCommit(ctx context.Context, collected Values) (int64, error) {
	return 1, nil
}

func TestNewRejectsDuplicateKeys(t *testing.T) {
	fields := []FieldSpec{
		{Key: "name", Kind: KindText},
		{Key: "name", Kind: KindText},
	}
	_, err := New("client", fields, noopCommit)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate field key")
}

func TestNewRejectsBadDefinitions(t *testing.T) {
	valid := []FieldSpec{{Key: "name", Kind: KindText}}

	tests := []struct {
		name   string
		form   string
		fields []FieldSpec
		commit CommitFunc
	}{
		{name: "empty name", form: "", fields: valid, commit: noopCommit},
		{name: "no fields", form: "client", fields: nil, commit: noopCommit},
		{name: "no commit", form: "client", fields: valid, commit: nil},
		{
			name: "empty key",
			form: "client", commit: noopCommit,
			fields: []FieldSpec{{Key: "", Kind: KindText}},
		},
		{
			name: "reference without resolver",
			form: "order", commit: noopCommit,
			fields: []FieldSpec{{Key: "client", Kind: KindReference}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.form, tt.fields, tt.commit)
			assert.Error(t, err)
		})
	}
}

func TestDefinitionIsImmutable(t *testing.T) {
	fields := []FieldSpec{
		{Key: "name", Prompt: "Name:", Kind: KindText},
		{Key: "cost", Prompt: "Cost:", Kind: KindAmount},
	}
	def, err := New("expense", fields, noopCommit)
	require.NoError(t, err)

	// Mutating the caller's slice must not change the definition.
	fields[0].Prompt = "changed"
	assert.Equal(t, "Name:", def.Field(0).Prompt)
	assert.Equal(t, 2, def.Len())
}

func TestRegistry(t *testing.T) {
	client, err := New("client", []FieldSpec{{Key: "name", Kind: KindText}}, noopCommit)
	require.NoError(t, err)
	order, err := New("order", []FieldSpec{{Key: "name", Kind: KindText}}, noopCommit)
	require.NoError(t, err)

	reg, err := NewRegistry(order, client)
	require.NoError(t, err)

	got, ok := reg.Lookup("client")
	require.True(t, ok)
	assert.Equal(t, "client", got.Name())

	_, ok = reg.Lookup("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"client", "order"}, reg.Names())
}

func TestRegistryRejectsDuplicateNames(t *testing.T) {
	a, err := New("client", []FieldSpec{{Key: "name", Kind: KindText}}, noopCommit)
	require.NoError(t, err)
	b, err := New("client", []FieldSpec{{Key: "other", Kind: KindText}}, noopCommit)
	require.NoError(t, err)

	_, err = NewRegistry(a, b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate form")
}

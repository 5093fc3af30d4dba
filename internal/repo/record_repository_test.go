package repo

import (
	"FormIntake/internal/model"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordBackends(t *testing.T) map[string]RecordRepository {
	t.Helper()
	return map[string]RecordRepository{
		"json": NewJSONRecordRepository(filepath.Join(t.TempDir(), "data.json")),
		"gorm": NewGormRecordRepository(newTestDB(t)),
	}
}

func fields(name string) model.RecordFields {
	return model.RecordFields{
		Name:      name,
		Surname:   name + "ov",
		Phone:     "+998 90 000 00 00",
		Residence: "Tashkent",
		Workplace: "",
	}
}

func TestRecordRepository_AppendGet(t *testing.T) {
	for name, r := range recordBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			before := time.Now().UTC().Add(-time.Second)

			require.NoError(t, r.Append(ctx, &model.Record{RecordFields: fields("a")}))
			require.NoError(t, r.Append(ctx, &model.Record{RecordFields: fields("b"), DocumentFile: strPtr("doc.pdf")}))

			got, err := r.Get(ctx, 0)
			require.NoError(t, err)
			assert.Equal(t, fields("a"), got.RecordFields)
			assert.Nil(t, got.DocumentFile)
			assert.Nil(t, got.PhotoFile)
			assert.True(t, got.CreatedAt.After(before))

			got, err = r.Get(ctx, 1)
			require.NoError(t, err)
			assert.Equal(t, fields("b"), got.RecordFields)
			require.NotNil(t, got.DocumentFile)
			assert.Equal(t, "doc.pdf", *got.DocumentFile)
			assert.Nil(t, got.PhotoFile)

			for _, idx := range []int{-1, 2, 100} {
				got, err = r.Get(ctx, idx)
				assert.Nil(t, got)
				assert.ErrorIs(t, err, ErrNotFound)
			}
		})
	}
}

func TestRecordRepository_UpdateKeepsImmutableFields(t *testing.T) {
	for name, r := range recordBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, r.Append(ctx, &model.Record{
				RecordFields: fields("a"),
				DocumentFile: strPtr("d.pdf"),
				PhotoFile:    strPtr("p.jpg"),
			}))
			before, err := r.Get(ctx, 0)
			require.NoError(t, err)

			upd := model.RecordFields{Name: "x", Surname: "y", Phone: "1"}
			require.NoError(t, r.Update(ctx, 0, upd))

			after, err := r.Get(ctx, 0)
			require.NoError(t, err)
			assert.Equal(t, upd, after.RecordFields)
			assert.True(t, before.CreatedAt.Equal(after.CreatedAt))
			assert.Equal(t, before.DocumentFile, after.DocumentFile)
			assert.Equal(t, before.PhotoFile, after.PhotoFile)

			assert.ErrorIs(t, r.Update(ctx, 1, upd), ErrNotFound)
			assert.ErrorIs(t, r.Update(ctx, -1, upd), ErrNotFound)
		})
	}
}

func TestRecordRepository_DeleteShifts(t *testing.T) {
	for name, r := range recordBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, n := range []string{"a", "b", "c", "d"} {
				require.NoError(t, r.Append(ctx, &model.Record{RecordFields: fields(n)}))
			}
			before, err := r.List(ctx)
			require.NoError(t, err)

			removed, err := r.Delete(ctx, 1)
			require.NoError(t, err)
			assert.Equal(t, "b", removed.Name)

			after, err := r.List(ctx)
			require.NoError(t, err)
			require.Len(t, after, 3)
			// до удалённого индекса — без изменений, после — сдвиг на единицу
			assert.Equal(t, before[0].RecordFields, after[0].RecordFields)
			for i := 1; i < len(after); i++ {
				assert.Equal(t, before[i+1].RecordFields, after[i].RecordFields)
			}

			_, err = r.Delete(ctx, 3)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

// Повтор мутаций на пустой коллекции даёт тот же List — скрытого состояния нет.
func TestRecordRepository_ReplayEqualsList(t *testing.T) {
	type op func(ctx context.Context, r RecordRepository) error
	ops := []op{
		func(ctx context.Context, r RecordRepository) error { return r.Append(ctx, &model.Record{RecordFields: fields("a")}) },
		func(ctx context.Context, r RecordRepository) error { return r.Append(ctx, &model.Record{RecordFields: fields("b")}) },
		func(ctx context.Context, r RecordRepository) error { return r.Update(ctx, 0, fields("a2")) },
		func(ctx context.Context, r RecordRepository) error { return r.Append(ctx, &model.Record{RecordFields: fields("c")}) },
		func(ctx context.Context, r RecordRepository) error { _, err := r.Delete(ctx, 1); return err },
	}

	for name, r := range recordBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, o := range ops {
				require.NoError(t, o(ctx, r))
			}
			got, err := r.List(ctx)
			require.NoError(t, err)

			want := []model.RecordFields{fields("a2"), fields("c")}
			require.Len(t, got, len(want))
			for i := range want {
				assert.Equal(t, want[i], got[i].RecordFields)
			}
		})
	}
}

func TestJSONRecordRepository_EmptyAndMissingFile(t *testing.T) {
	dir := t.TempDir()
	r := NewJSONRecordRepository(filepath.Join(dir, "data.json"))

	list, err := r.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, EnsureJSONFile(filepath.Join(dir, "data.json")))
	b, err := os.ReadFile(filepath.Join(dir, "data.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(b))
}

func TestJSONRecordRepository_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	r := NewJSONRecordRepository(path)

	_, err := r.List(context.Background())
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, r.Append(context.Background(), &model.Record{RecordFields: fields("a")}), ErrPersistence)
}

// Неудачная запись не попадает в последующие чтения.
func TestJSONRecordRepository_FailedWriteNotApplied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")
	r := NewJSONRecordRepository(path)
	ctx := context.Background()
	require.NoError(t, r.Append(ctx, &model.Record{RecordFields: fields("a")}))

	require.NoError(t, os.Chmod(dir, 0o555))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	err := r.Append(ctx, &model.Record{RecordFields: fields("b")})
	assert.ErrorIs(t, err, ErrPersistence)

	list, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestJSONRecordRepository_NullAttachmentsInFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	r := NewJSONRecordRepository(path)
	require.NoError(t, r.Append(context.Background(), &model.Record{RecordFields: fields("a")}))

	var raw []map[string]any
	require.NoError(t, readJSONFile(path, &raw))
	require.Len(t, raw, 1)
	v, ok := raw[0]["documentFile"]
	assert.True(t, ok)
	assert.Nil(t, v)
	_, err := time.Parse(time.RFC3339, raw[0]["createdAt"].(string))
	assert.NoError(t, err)
}

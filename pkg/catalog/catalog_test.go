package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"

	"chlite/pkg/types"
)

func newUsersTable() *Table {
	return &Table{
		Name: "Users",
		Columns: []Column{
			{Name: "id", Type: types.Int64Type},
			{Name: "name", Type: types.StringType},
		},
	}
}

func TestCreateAndGetTableCaseInsensitive(t *testing.T) {
	c := New()
	require.NoError(t, c.CreateTable(newUsersTable(), false))

	tbl, ok := c.GetTable("USERS")
	require.True(t, ok)
	require.Equal(t, "Users", tbl.Name)
}

func TestCreateTableExistsError(t *testing.T) {
	c := New()
	require.NoError(t, c.CreateTable(newUsersTable(), false))
	err := c.CreateTable(newUsersTable(), false)
	require.ErrorIs(t, err, ErrTableExists)
}

func TestCreateTableIfNotExistsIsNoop(t *testing.T) {
	c := New()
	require.NoError(t, c.CreateTable(newUsersTable(), false))
	require.NoError(t, c.CreateTable(newUsersTable(), true))
}

func TestDropTableNotFoundError(t *testing.T) {
	c := New()
	err := c.DropTable("missing", false)
	require.ErrorIs(t, err, ErrTableNotFound)
}

func TestDropTableIfExistsIsNoop(t *testing.T) {
	c := New()
	require.NoError(t, c.DropTable("missing", true))
}

func TestListTablesSorted(t *testing.T) {
	c := New()
	require.NoError(t, c.CreateTable(&Table{Name: "zebra"}, false))
	require.NoError(t, c.CreateTable(&Table{Name: "apple"}, false))
	require.Equal(t, []string{"apple", "zebra"}, c.ListTables())
}

func TestRowsAppendAndSnapshot(t *testing.T) {
	tbl := newUsersTable()
	tbl.AppendRow([]types.Value{types.NewInt64(1), types.NewString(types.KindString, "a", 0)})
	tbl.AppendRow([]types.Value{types.NewInt64(2), types.NewString(types.KindString, "b", 0)})

	snap := tbl.Snapshot()
	require.Len(t, snap, 2)
	require.Equal(t, 2, tbl.RowCount())

	idx, ok := tbl.ColumnIndex("NAME")
	require.True(t, ok)
	require.Equal(t, 1, idx)
}

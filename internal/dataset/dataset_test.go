package dataset

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"religion-map/internal/religion"
	"religion-map/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `[
  {"Name": "Alpha", "Christianity": "60", "Islam": "10", "Buddhism": "5", "Hinduism": "0", "nondenominational": "20", "Other": "5"},
  {"Name": "Beta", "Christianity": 1.5, "Islam": 90, "Buddhism": null, "Hinduism": "0", "nondenominational": "x"}
]`

func TestDecodeJSON(t *testing.T) {
	rows, err := DecodeJSON([]byte(sampleJSON))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Alpha", rows[0].Name)
	assert.Equal(t, "60", rows[0].Fields[religion.Christianity])

	assert.Equal(t, "1.5", rows[1].Fields[religion.Christianity])
	assert.Equal(t, "90", rows[1].Fields[religion.Islam])
	assert.Equal(t, "", rows[1].Fields[religion.Buddhism])
	_, has := rows[1].Fields[religion.Other]
	assert.False(t, has)
}

func TestDecodeJSONInvalid(t *testing.T) {
	_, err := DecodeJSON([]byte(`{"Name":"Alpha"}`))
	assert.Error(t, err)
}

func TestDecodeCSV(t *testing.T) {
	in := "Name,Christianity,Islam,Buddhism,Hinduism,nondenominational,Other\n" +
		"Alpha,60,10,5,0,20,5\n" +
		"Broken,1,2\n" +
		"\"Korea, South\",29,0,23,0,46,2\n"
	rows, err := DecodeCSV(strings.NewReader(in), 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Korea, South", rows[1].Name)
	assert.Equal(t, "46", rows[1].Fields[religion.Nondenominational])
}

func TestDecodeCSVMissingColumns(t *testing.T) {
	rows, err := DecodeCSV(strings.NewReader("Name;Islam\nAlpha;12\n"), ';')
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Len(t, rows[0].Fields, 1)

	_, err = DecodeCSV(strings.NewReader("Country,Islam\nAlpha,12\n"), 0)
	assert.ErrorIs(t, err, ErrNoNameColumn)
}

func TestFromPath(t *testing.T) {
	dir := t.TempDir()
	jp := filepath.Join(dir, "religion.json")
	require.NoError(t, os.WriteFile(jp, []byte(sampleJSON), 0o644))
	cp := filepath.Join(dir, "religion.CSV")
	require.NoError(t, os.WriteFile(cp, []byte("Name,Islam\nAlpha,3\n"), 0o644))

	src := FromPath(jp, nil)
	assert.IsType(t, &JSONFile{}, src)
	rows, err := src.Rows(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	src = FromPath(cp, nil)
	assert.IsType(t, &CSVFile{}, src)
	rows, err = src.Rows(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestJSONFileOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/religion.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(sampleJSON))
	}))
	defer srv.Close()

	rows, err := (&JSONFile{Src: srv.URL + "/religion.json", Client: srv.Client()}).Rows(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, err = (&JSONFile{Src: srv.URL + "/missing.json", Client: srv.Client()}).Rows(context.Background())
	assert.Error(t, err)
}

func TestPostgresSource(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectQuery("FROM _religion_profiles").WillReturnRows(
		sqlmock.NewRows([]string{"name", "christianity", "islam", "buddhism", "hinduism", "nondenominational", "other"}).
			AddRow("Alpha", "60", "10", "5", "0", "20", "5"))

	rows, err := (&Postgres{Store: store.AttachDB(db)}).Rows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Alpha", rows[0].Name)
}

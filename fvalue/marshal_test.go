package fvalue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type testUser struct {
	Name      string    `firestore:"name"`
	Age       int       `firestore:"age"`
	Score     float32   `firestore:"score"`
	Admin     bool      `firestore:"admin"`
	Key       []byte    `firestore:"key"`
	CreatedAt time.Time `firestore:"created_at"`
	Tags      []string  `firestore:"tags"`
	Secret    string    `firestore:"-"`
	Untagged  string
	hidden    string
}

func TestMarshalStruct(t *testing.T) {
	u := testUser{
		Name:      "alice",
		Age:       30,
		Score:     1.5,
		Admin:     true,
		Key:       []byte{9},
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Tags:      []string{"a", "b"},
		Secret:    "do not store",
		Untagged:  "kept",
		hidden:    "skipped",
	}

	v, err := Marshal(u)
	require.NoError(t, err)

	m, ok := v.AsMap()
	require.True(t, ok)
	require.True(t, m["name"].Equal(String("alice")))
	require.True(t, m["age"].Equal(Int(30)))
	require.True(t, m["score"].Equal(Double(1.5)))
	require.True(t, m["admin"].Equal(Bool(true)))
	require.True(t, m["key"].Equal(Bytes([]byte{9})))
	require.True(t, m["created_at"].Equal(Timestamp(u.CreatedAt)))
	require.True(t, m["tags"].Equal(Array(String("a"), String("b"))))
	require.True(t, m["Untagged"].Equal(String("kept")))
	_, ok = m["Secret"]
	require.False(t, ok)
	_, ok = m["hidden"]
	require.False(t, ok)
}

func TestMarshalWidening(t *testing.T) {
	v, err := Marshal(int8(-3))
	require.NoError(t, err)
	require.True(t, v.Equal(Int(-3)))

	v, err = Marshal(uint16(7))
	require.NoError(t, err)
	require.True(t, v.Equal(Int(7)))

	v, err = Marshal(float32(2.5))
	require.NoError(t, err)
	require.True(t, v.Equal(Double(2.5)))
}

func TestMarshalNilPointer(t *testing.T) {
	var p *testUser
	v, err := Marshal(p)
	require.NoError(t, err)
	require.True(t, v.IsNull())
}

func TestMarshalRejectsNonStringMapKeys(t *testing.T) {
	_, err := Marshal(map[int]string{1: "x"})
	var keyErr *InvalidMapKeyError
	require.ErrorAs(t, err, &keyErr)
}

func TestMarshalRejectsUnsupportedTypes(t *testing.T) {
	_, err := Marshal(make(chan int))
	var valErr *InvalidValueError
	require.ErrorAs(t, err, &valErr)
}

func TestUnmarshalRoundTrip(t *testing.T) {
	in := testUser{
		Name:      "bob",
		Age:       41,
		Score:     0.25,
		Admin:     false,
		Key:       []byte{1, 2, 3},
		CreatedAt: time.Date(2023, 11, 5, 6, 7, 8, 0, time.UTC),
		Tags:      []string{"x"},
		Untagged:  "u",
	}

	v, err := Marshal(in)
	require.NoError(t, err)

	var out testUser
	require.NoError(t, Unmarshal(v, &out))
	require.Equal(t, in.Name, out.Name)
	require.Equal(t, in.Age, out.Age)
	require.Equal(t, in.Score, out.Score)
	require.Equal(t, in.Key, out.Key)
	require.True(t, in.CreatedAt.Equal(out.CreatedAt))
	require.Equal(t, in.Tags, out.Tags)
	require.Equal(t, in.Untagged, out.Untagged)
}

func TestUnmarshalRequiresPointer(t *testing.T) {
	var out testUser
	err := Unmarshal(Map(nil), out)
	var typeErr *IncompatibleTypeError
	require.ErrorAs(t, err, &typeErr)
}

func TestUnmarshalMismatch(t *testing.T) {
	var n int
	err := Unmarshal(String("not a number"), &n)
	var typeErr *IncompatibleTypeError
	require.ErrorAs(t, err, &typeErr)
}

func TestUnmarshalIntWidensIntoFloat(t *testing.T) {
	var f float64
	require.NoError(t, Unmarshal(Int(4), &f))
	require.Equal(t, 4.0, f)
}

func TestUnmarshalNullClearsPointer(t *testing.T) {
	s := "set"
	p := &s
	require.NoError(t, Unmarshal(Null(), &p))
	require.Nil(t, p)
}

func TestUnmarshalIntoInterface(t *testing.T) {
	var out any
	require.NoError(t, Unmarshal(Map(map[string]Value{"n": Int(1)}), &out))
	require.Equal(t, map[string]any{"n": int64(1)}, out)
}

func TestMarshalFields(t *testing.T) {
	f, err := MarshalFields(struct {
		A string `firestore:"a"`
	}{A: "x"})
	require.NoError(t, err)
	require.True(t, f.Equal(Fields{"a": String("x")}))

	_, err = MarshalFields("not a map shape")
	var typeErr *IncompatibleTypeError
	require.ErrorAs(t, err, &typeErr)
}

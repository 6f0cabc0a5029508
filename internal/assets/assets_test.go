package assets

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	require.Equal(t, "MarioCircuit", Sanitize("Mario Circuit"))
	require.Equal(t, "Toads_Factory", Sanitize("Toad's__Factory"))
	require.Equal(t, "Baby_Park", Sanitize("__Baby___Park_"))
	require.Equal(t, "DK-Jungle", Sanitize("DK-Jungle!"))
	require.Equal(t, "", Sanitize("!!!"))
}

func TestPath(t *testing.T) {
	p, err := Path(KindCircuit, "Mario Circuit")
	require.NoError(t, err)
	require.Equal(t, "circuits/MarioCircuit.png", p)

	p, err = Path(KindVehicle, "Standard_Kart")
	require.NoError(t, err)
	require.Equal(t, "vehicles/Standard_Kart.png", p)

	_, err = Path(Kind("track"), "x")
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestResolver(t *testing.T) {
	r := Resolver{BaseDir: "static/img"}
	p, err := r.Path(KindCharacter, "Dry Bones")
	require.NoError(t, err)
	require.Equal(t, "static/img/characters/DryBones.png", p)
}

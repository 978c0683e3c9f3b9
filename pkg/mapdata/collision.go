package mapdata

import "slices"

// CollisionTypes lists every collision type name found in the game executable.
// Other spellings appear in some files but are coerced to one of these
// (e.g. "NML_S" to "NML_SOFT").
var CollisionTypes = []string{
	"NML",
	"CANCEL_METAMO",
	"GO_HEAVEN",
	"GO_SEC",
	"THROUGH",
	"SLOW",
	"NONE_SLIP",
	"NML_URA",
	"THROUGH_URA",
	"NML_SOFT",
	"THROUGH_SOFT",
	"NML_HARD",
	"THROUGH_HARD",
	"CAMERA",
	"CAMERA_THROUGH",
	"CAMERA_PLAYER",
	"CAMERA_PLAYER_Y",
	"CAMERA_MORI",
	"CAMERA_NML_PLAYER",
	"CAMERA_M",
	"CAMERA_THROUGH_M",
	"CAMERA_PLAYER_M",
	"CAMERA_PLAYER_Y_M",
	"CAMERA_NML_PLAYER_M",
	"DAMAGE",
	"ONE_DEAD",
	"IGNORE_PLAYER",
	"QUICKSAND",
	"ENT_TUNNEL",
	"CART",
	"DESTROY_GIMMICK",
	"NML_SLIP",
	"THROUGH_SLIP",
	"SPIN",
	"SPIN_DMG",
	"SPIN_CORRECT",
	"NML_BEAD_NS",
	"NML_BEAD_NS_HARD",
	"NML_BEAD_NS_URA",
	"THROUGH_BEAD_NS",
	"BEAD_ONLY",
	"NML_SIT_FLOOR",
	"THROUGH_SIT_FLOOR",
	"DMG_FIRE",
	"DMG_ICE",
	"DMG_THUNDER",
	"DELETE_ENEMY",
	"ACCEL_GROUND",
	"PLAYER_ONLY",
	"PLAYER_ONLY_THROUGH",
	"PL_PENDULUM_REFLECT",
	"RSTONE_COMMAND",
	"REFLECT_CAPTURE_OBJ",
	"NML_ICE",
	"THROUGH_ICE",
	"GO_HEAVEN_FIRE",
	"GO_HEAVEN_FIRE_PL_ONLY",
	"PULL_ENEMY",
	"NONE",
	"THROUGH_TRAIN_LIMIT",
}

// IsKnownCollisionType reports whether name is in CollisionTypes.
func IsKnownCollisionType(name string) bool {
	return slices.Contains(CollisionTypes, name)
}

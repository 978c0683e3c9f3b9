package endata

// ErrorLabel is returned for unknown enemy ids and bead colors.
const ErrorLabel = "<error>"

// Catalogue lists the known enemy ids and their in-game names.
var Catalogue = []struct {
	ID   string
	Name string
}{
	{"ENEMY00", "Green Magmotamus"},
	{"ENEMY01", "Shelby"},
	{"ENEMY02", "Uniclod"},
	{"ENEMY03", "Buttonbee"},
	{"ENEMY04", "Slobba"},
	{"ENEMY05", "Sulkworm"},
	{"ENEMY06", "Dandan"},
	{"ENEMY07", "Jelly Jr."},
	{"ENEMY08", "Calderon"},
	{"ENEMY09", "Swadclod"},
	{"ENEMY10", "Sneak Sack"},
	{"ENEMY11", "Battins"},
	{"ENEMY12", "Candlemander"},
	{"ENEMY13", "Sea Jelly"},
	{"ENEMY14", "Whistle Soldier"},
	{"ENEMY15", "Sword Soldier"},
	{"ENEMY16", "Spear Soldier"},
	{"ENEMY17", "Cannon Soldier"},
	{"ENEMY18", "Large Sawgill"},
	{"ENEMY19", "Anemonee"},
	{"ENEMY20", "Danglerfish"},
	{"ENEMY21", "Bobber Clod"},
	{"ENEMY23", "Magmotamus"},
	{"ENEMY24", "Snip-Snap"},
	{"ENEMY25", "Gator"},
	{"ENEMY26", "Waddle Dee"},
	{"ENEMY27", "Spear Waddle Dee"},
	{"ENEMY28", "Waddle Doo"},
	{"ENEMY29", "Ooki"},
	{"ENEMY30", "Bomber"},
	{"ENEMY31", "Flamer"},
	{"ENEMY32", "Scarfy"},
	{"ENEMY33", "Blipper"},
	{"ENEMY34", "Buttonbug"},
	{"ENEMY35", "Bronto Burt"},
	{"ENEMY36", "Scared Soldier"},
	{"ENEMY37", "Grizzo"},
	{"ENEMY38", "Shotso"},
	{"ENEMY39", "Parasol Waddle Dee"},
	{"ENEMY40", "Chilly"},
	{"ENEMY41", "Waddle Dee (Duplicate)"},
	{"ENEMY42", "UFO"},
	{"ENEMY43", "Bow Waddle Dee"},
	{"ENEMY45", "Cyclod"},
	{"ENEMY46", "Buttonfly"},
	{"ENEMY48", "Space Jelly"},
	{"ENEMY49", "Truck Monster"},
	{"ENEMY50", "Large Cannon (Battleship Halberd)"},
	{"ENEMY51", "Small Cannon (Battleship Halberd)"},
	{"ENEMY52", "Battleship Halberd Turret"},
	{"ENEMY53", "Battleship Halberd Turret (Turret only)"},
	{"ENEMY54", "Battleship Halberd Flamethrower"},
	{"ENEMY55", "Podium (Cyclod)"},
	{"ENEMY56", "Battleship Halberd Flamethrower Barrier"},
	{"ENEMY57", "Orbitfly"},
	{"ENEMY58", "Spore Jelly"},
	{"ENEMY59", "UFO (Alt.)"},
	{"ENEMY60", "Dropso"},
	{"ENEMY61", "Stogue"},
	{"ENEMY62", "Capamari Tentacle"},
	{"ENEMY63", "Unidentified Enemy 63"},
	{"ENEMY64", "Unidentified Enemy 64"},
	{"ENEMY65", "Unidentified Enemy 65"},
	{"ENEMY66", "Unidentified Enemy 66"},
	{"ENEMY67", "Unidentified Enemy 67"},
	{"ENEMY68", "Unidentified Enemy 68"},
	{"ENEMY69", "Meta Knight's Sword"},
	{"ENEMY70", "Unidentified Enemy 70"},
	{"ENEMY71", "Unidentified Enemy 71"},
	{"ENEMY72", "Unidentified Enemy 72"},
	{"ENEMY74", "Unidentified Enemy 74"},
	{"ENEMY75", "Unidentified Enemy 75"},
	{"ENEMY76", "Smiley Face"},
	{"ENEMY78", "Unidentified Enemy 78"},
	{"ENEMY80", "Unidentified Enemy 80"},
	{"ENEMY81", "Unidentified Enemy 81"},
	{"ENEMY82", "Unidentified Enemy 82"},
	{"ENEMY83", "Unidentified Enemy 83"},
	{"ENEMY84", "Unidentified Enemy 84"},
	{"ENEMY100", "Small Sawgill"},
	{"ENEMY101", "Freezo"},
	{"ENEMY102", "Bobber Clod (Duplicate)"},
	{"ENEMY103", "Horizontal Battleship Halberd Barrier"},
	{"ENEMY106", "Lil' Kracko"},
	{"ENEMY107", "Kracko"},
	{"ENEMY110", "Emba"},
	{"ENEMY111", "Whistle Mariner"},
	{"ENEMY112", "Sword Mariner"},
	{"ENEMY113", "Spear Mariner"},
	{"ENEMY114", "Cannon Mariner"},
	{"ENEMY115", "Wicked Willow"},
	{"ENEMY116", "Cutfish"},
	{"ENEMY117", "Blast Mariner"},
	{"ENEMY118", "Scared Mariner"},
	{"ENEMY119", "Small Cannon (Moon Base)"},
	{"HELP_ROBOT", "Controls Screen"},
}

var enemyNames = func() map[string]string {
	m := make(map[string]string, len(Catalogue))
	for _, e := range Catalogue {
		m[e.ID] = e.Name
	}
	return m
}()

// EnemyName returns the in-game name for an enemy id, or ErrorLabel.
func EnemyName(id string) string {
	if name, ok := enemyNames[id]; ok {
		return name
	}
	return ErrorLabel
}

// Bead colors as stored in enemy records. The game spells purple "PERPLE".
var colorLabels = [][2]string{
	{"RED", "Red"},
	{"ORANGE", "Orange"},
	{"YELLOW", "Yellow"},
	{"GREEN", "Green"},
	{"BLUE", "Blue"},
	{"PERPLE", "Purple"},
	{"WHITE", "White"},
	{"RANDOM", "Random"},
}

// ColorLabel maps a stored bead color to its display label.
func ColorLabel(s string) string {
	for _, c := range colorLabels {
		if c[0] == s {
			return c[1]
		}
	}
	return ErrorLabel
}

// ColorString maps a display label back to the stored bead color.
func ColorString(label string) string {
	for _, c := range colorLabels {
		if c[1] == label {
			return c[0]
		}
	}
	return ErrorLabel
}

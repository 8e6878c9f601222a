// Package messages holds the user-facing texts, loaded from messages.yml.
package messages

// ID names a message.
type ID string

const (
	SpawnStationAdded      ID = "SpawnStationAdded"
	MainSpawnStationSet    ID = "MainSpawnStationSet"
	NoMainSpawnStationSet  ID = "NoMainSpawnStationSet"
	HomeStationSet         ID = "HomeStationSet"
	HomeStationSetConfirm  ID = "HomeStationSetConfirm"
	NoHomeStationSet       ID = "NoHomeStationSet"
	HomeStationNotFound    ID = "HomeStationNotFound"
	SpawnStationSet        ID = "SpawnStationSet"
	SpawnStationSetConfirm ID = "SpawnStationSetConfirm"
	NoSpawnStationSet      ID = "NoSpawnStationSet"
	SpawnStationNotFound   ID = "SpawnStationNotFound"
	ThisIsNoStation        ID = "ThisIsNoStation"
	TeleportToHome         ID = "TeleportToHome"
	TeleportToSpawn        ID = "TeleportToSpawn"
	NotEnoughMoney         ID = "NotEnoughMoney"
	TransactionFailure     ID = "TransactionFailure"
	TeleportCostsConfirm   ID = "TeleportCostsConfirm"
	TeleportCostsApplied   ID = "TeleportCostsApplied"
	NoPermission           ID = "NoPermission"
)

// All lists every message id in display order.
var All = []ID{
	SpawnStationAdded,
	MainSpawnStationSet,
	NoMainSpawnStationSet,
	HomeStationSet,
	HomeStationSetConfirm,
	NoHomeStationSet,
	HomeStationNotFound,
	SpawnStationSet,
	SpawnStationSetConfirm,
	NoSpawnStationSet,
	SpawnStationNotFound,
	ThisIsNoStation,
	TeleportToHome,
	TeleportToSpawn,
	NotEnoughMoney,
	TransactionFailure,
	TeleportCostsConfirm,
	TeleportCostsApplied,
	NoPermission,
}

// Defaults returns the built-in texts. An empty text disables the message;
// for the *Confirm messages it also disables the confirmation step.
func Defaults() map[ID]string {
	return map[ID]string{
		SpawnStationAdded:      "&aA &espawn station &awas added!",
		MainSpawnStationSet:    "&aThe &emain spawn station &awas set!",
		NoMainSpawnStationSet:  "&cThere is no valid &emain spawn station &cset yet!",
		HomeStationSet:         "&aYou have set your &ehome station&a!\\n&aYou will teleport here every time you trigger the top button of a &espawn station&a.",
		HomeStationSetConfirm:  "&6Click again to make this your &ehome station&6.",
		NoHomeStationSet:       "&cYou don't have a &ehome station &cset yet!",
		HomeStationNotFound:    "&cYour &ehome station &cdoes no longer exist!",
		SpawnStationSet:        "&aYou have set your &espawn station&a!\\n&aYou will teleport here every time you trigger the top button of a &ehome station&a.",
		SpawnStationSetConfirm: "&6Click again to make this your &espawn station&6.",
		NoSpawnStationSet:      "&cYou don't have a &espawn station &cset yet! &6Selecting the &emain spawn station &6for you.",
		SpawnStationNotFound:   "&cYour &espawn station &cdoes no longer exist!",
		ThisIsNoStation:        "&cThis is not a valid station!",
		TeleportToHome:         "&aTeleporting home...",
		TeleportToSpawn:        "&aTeleporting to spawn...",
		NotEnoughMoney:         "&cYou don't have enough money! Teleporting costs &e{costs}$&c, but you only have &e{balance}$&c.",
		TransactionFailure:     "&cSomething went wrong: &e{error}",
		TeleportCostsConfirm:   "&cTeleporting costs &e{costs}$&c, you have &e{balance}$&c! &6Click again to confirm.",
		TeleportCostsApplied:   "&aWithdrawn teleport costs of &e{costs}$&a. You have &e{balance}$ &aleft.",
		NoPermission:           "&cYou don't have the permission to do that!",
	}
}

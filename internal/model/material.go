package model

// Material names a block type as reported by the game host.
type Material string

const (
	MaterialAir           Material = "AIR"
	MaterialStoneButton   Material = "STONE_BUTTON"
	MaterialEmeraldBlock  Material = "EMERALD_BLOCK"
	MaterialLapisBlock    Material = "LAPIS_BLOCK"
	MaterialRedstoneBlock Material = "REDSTONE_BLOCK"
)

// Block is the state of a single block: its material and, for attachable
// blocks such as buttons, the face of the block it is attached to.
type Block struct {
	Material Material
	Attached Face
}

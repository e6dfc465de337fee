package protection

// Стандартные флаги движка
var (
	Passthrough   = NewStateFlag("passthrough", 0)
	Build         = NewStateFlag("build", 0, WithRegionGroup(GroupNonMembers))
	Interact      = NewStateFlag("interact", 0, WithRegionGroup(GroupNonMembers))
	Use           = NewStateFlag("use", 0, WithRegionGroup(GroupNonMembers))
	Entry         = NewStateFlag("entry", 0, WithRegionGroup(GroupNonMembers))
	Exit          = NewStateFlag("exit", 0, WithRegionGroup(GroupNonMembers))
	PvP           = NewStateFlag("pvp", 0)
	MobSpawning   = NewStateFlag("mob-spawning", 0)
	TNT           = NewStateFlag("tnt", 0)
	FireSpread    = NewStateFlag("fire-spread", 0)
	Invincibility = NewStateFlag("invincible", 0)
	EnderPearl    = NewStateFlag("enderpearl", 0)
	Greeting      = NewStringFlag("greeting")
	Farewell      = NewStringFlag("farewell")
	DenyMessage   = NewStringFlag("deny-message").WithDefault("Hey! Sorry, but you can't %what% here.")
	Teleport      = NewLocationFlag("teleport", WithRegionGroup(GroupMembers))
	Spawn         = NewLocationFlag("spawn", WithRegionGroup(GroupMembers))
	HealAmount    = NewIntegerFlag("heal-amount")
	HealDelay     = NewIntegerFlag("heal-delay")
	MaxHeal       = NewDoubleFlag("heal-max-health")
	Price         = NewDoubleFlag("price")
	Buyable       = NewBooleanFlag("buyable").WithDefault(false)
	NotifyEnter   = NewBooleanFlag("notify-enter")
	NotifyLeave   = NewBooleanFlag("notify-leave")
	BlockedCmds   = NewSetFlag("blocked-cmds")
	AllowedCmds   = NewSetFlag("allowed-cmds")
	GameMode      = NewStringFlag("game-mode")
	TimeLock      = NewStringFlag("time-lock")
	SendChat      = NewStateFlag("send-chat", 0)
	ReceiveChat   = NewStateFlag("receive-chat", 0)
	ItemDrop      = NewStateFlag("item-drop", 0)
	ExpDrops      = NewStateFlag("exp-drops", 0)
)

// DefaultFlags возвращает список стандартных флагов
func DefaultFlags() []Flag {
	return []Flag{
		Passthrough, Build, Interact, Use, Entry, Exit, PvP, MobSpawning, TNT,
		FireSpread, Invincibility, EnderPearl, Greeting, Farewell, DenyMessage,
		Teleport, Spawn, HealAmount, HealDelay, MaxHeal, Price, Buyable,
		NotifyEnter, NotifyLeave, BlockedCmds, AllowedCmds, GameMode, TimeLock,
		SendChat, ReceiveChat, ItemDrop, ExpDrops,
	}
}

package domain

import (
	"github.com/yungbote/nishad-backend/internal/domain/assets"
	"github.com/yungbote/nishad-backend/internal/domain/auth"
	"github.com/yungbote/nishad-backend/internal/domain/events"
	"github.com/yungbote/nishad-backend/internal/domain/gatepass"
	"github.com/yungbote/nishad-backend/internal/domain/user"
)

type User = user.User
type Role = user.Role
type GatePassDelegation = user.GatePassDelegation
type UserToken = auth.UserToken

type Asset = assets.Asset
type AssetType = assets.AssetType
type AssetStatus = assets.AssetStatus
type AssetCondition = assets.AssetCondition
type AssetCheckout = assets.AssetCheckout
type CheckoutStatus = assets.CheckoutStatus
type AssetMaintenance = assets.AssetMaintenance
type AssetEvent = assets.AssetEvent

type Event = events.Event

type EventPass = gatepass.EventPass
type AccessLevel = gatepass.AccessLevel
type VisitorPass = gatepass.VisitorPass
type PassType = gatepass.PassType
type ApprovalStatus = gatepass.ApprovalStatus
type GatePassLog = gatepass.GatePassLog

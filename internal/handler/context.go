package handler

type ContextKey string

var (
	SessionCtxKey      ContextKey = "session"
	MyInfoCtx          ContextKey = "myInfo"
	PersonnelInfoCtx   ContextKey = "personnelInfo"
	EquipeCtx          ContextKey = "equipe"
	PiquetCtx          ContextKey = "piquet"
	GardeCtx           ContextKey = "garde"
	AffectationCtx     ContextKey = "affectation"
	IndisponibiliteCtx ContextKey = "indisponibilite"
)

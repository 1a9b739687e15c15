package constraints

// Family names every constraint family the Compiler can emit. The
// Solver Driver's infeasibility bisection mode disables them by name
// to localize which family blocks feasibility, without rewriting the
// model.
type Family string

const (
	FamilyRoomExclusion       Family = "room_exclusion"        // F1
	FamilyTeacherExclusion    Family = "teacher_exclusion"      // F2
	FamilyGroupExclusion      Family = "group_exclusion"        // F3
	FamilyHierarchyExclusion  Family = "hierarchy_exclusion"    // F4
	FamilyTeacherAvailability Family = "teacher_availability"   // F5
	FamilyRoomAvailability    Family = "room_availability"      // F6
	FamilyGroupAvailability   Family = "group_availability"     // F7
	FamilySessionObligation   Family = "session_obligation"     // F8
	FamilyLunchWindow         Family = "lunch_window"           // F9 (pruned at variable build; listed for completeness)
	FamilyOrdering            Family = "ordering"                // F10
	FamilyCapacitySoft        Family = "capacity_soft"           // F11
	FamilyLateSoft            Family = "late_soft"
	FamilyMediumAvailability  Family = "medium_availability_soft"
)

// AllFamilies lists the hard families the Compiler emits (F9 and the
// soft families are not included), in the order they're compiled, the
// order the bisection driver enumerates singletons/pairs/triples in.
var AllFamilies = []Family{
	FamilyRoomExclusion,
	FamilyTeacherExclusion,
	FamilyGroupExclusion,
	FamilyHierarchyExclusion,
	FamilyTeacherAvailability,
	FamilyRoomAvailability,
	FamilyGroupAvailability,
	FamilySessionObligation,
	FamilyOrdering,
}

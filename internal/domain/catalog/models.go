package catalog

// Models lists every catalog table in dependency order for migration.
func Models() []any {
	return []any{
		&Tag{},
		&System{},
		&Author{},
		&Publication{},
		&Phase{},
		&Property{},
		&Unit{},
		&SpaceGroup{},
		&Dataset{},
		&Dataseries{},
		&Datapoint{},
		&NumericalValue{},
		&NumericalValueFixed{},
		&SynthesisMethod{},
		&ExperimentalDetails{},
		&ComputationalDetails{},
		&Comment{},
		&AtomicPositions{},
		&ExcitonEmission{},
		&SynthesisMethodOld{},
		&BandStructure{},
		&MaterialProperty{},
		&CatalogEvent{},
	}
}

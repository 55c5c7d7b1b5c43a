package catalog

import (
	"curaframe/internal/evaluation"
	"curaframe/internal/population"
)

// NewEngine builds an engine over bundle and registers every population
// preset. Modifiers that target constraints outside the bundle are dropped
// so each population stays known to the engine even when it adjusts
// nothing.
func (c *Catalog) NewEngine(bundle string, opts ...evaluation.Option) (*evaluation.Engine, error) {
	constraints, err := c.Bundle(bundle)
	if err != nil {
		return nil, err
	}
	engine, err := evaluation.New(constraints, opts...)
	if err != nil {
		return nil, err
	}
	for _, name := range c.PopulationNames() {
		mods, err := c.Population(name)
		if err != nil {
			return nil, err
		}
		applicable := make(population.Modifiers, len(mods))
		for target, m := range mods {
			if _, ok := engine.Constraint(target); ok {
				applicable[target] = m
			}
		}
		if err := engine.AddPopulation(name, applicable); err != nil {
			return nil, err
		}
	}
	return engine, nil
}

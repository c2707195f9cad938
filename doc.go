/*
 * doc.go, part of goScatter.
 *
 * Copyright 2026 The goScatter authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

/*Package scatter is the main package of the goScatter library. It provides the molecule
structure (a set of point nuclear charges), the charge channels a molecule is split into,
facilities for reading and writing XYZ files with per-molecule targets, some geometric
manipulations, and the error types shared by all the packages of the library.

	**goScatter Capabilities**

    Encodes molecules as sums of Gaussians on a regular grid, one grid per charge
	channel (package density).

    Computes 3D solid harmonic wavelet scattering coefficients of the resulting
	densities: order 0, 1 and 2, integrated with any set of powers (package harmonic).
	The coefficients are invariant to rotations and translations of the molecule.

    Assembles coefficients into fixed-order feature vectors, optionally log-scaled,
	and stores feature matrices in zstd-compressed files (package features).

    Regresses molecular properties from the features with standardized ordinary least
	squares, ridge or lasso models, with parallel k-fold cross-validation
	(package regress).

    Runs the whole per-molecule stage over large datasets in parallel, isolating
	failing molecules (package batch).

    Stores trained models in SQLite (package store) and draws parity and residual
	plots (package chemplot).

The cmd/goscatter program puts everything together behind a command line interface.

*/
package scatter

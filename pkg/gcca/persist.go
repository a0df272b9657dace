package gcca

import (
	"bufio"
	"encoding/gob"
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// matrixRecord is the serialized form of a dense matrix.
type matrixRecord struct {
	Rows, Cols int
	Data       []float64
}

// paramsRecord is the persisted document for a fitted model. CovMat is keyed
// "i_j" per covariance block, HList and ZList by the data set index. ZList is
// nil unless Transform had run before saving.
type paramsRecord struct {
	NComponents int
	RegParam    float64
	DataNum     int
	EigVals     []float64
	CovMat      map[string]matrixRecord
	HList       map[string]matrixRecord
	ZList       map[string]matrixRecord
}

func recordOf(x *mat.Dense) matrixRecord {
	r, c := x.Dims()
	data := make([]float64, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			data[i*c+j] = x.At(i, j)
		}
	}
	return matrixRecord{Rows: r, Cols: c, Data: data}
}

func (rec matrixRecord) matrix() (*mat.Dense, error) {
	if rec.Rows <= 0 || rec.Cols <= 0 || len(rec.Data) != rec.Rows*rec.Cols {
		return nil, fmt.Errorf("matrix record %dx%d with %d values", rec.Rows, rec.Cols, len(rec.Data))
	}
	return mat.NewDense(rec.Rows, rec.Cols, rec.Data), nil
}

// Save writes the fitted parameters to path. Projected results are included
// only if Transform has run since the last Fit.
func (m *Model) Save(path string) (err error) {
	m.logger.Info("saving gcca params", zap.String("path", path))

	rec := paramsRecord{
		NComponents: m.NComponents,
		RegParam:    m.RegParam,
		DataNum:     m.dataNum,
		EigVals:     m.eigVals,
		CovMat:      make(map[string]matrixRecord),
		HList:       make(map[string]matrixRecord),
	}
	for i := 0; i < m.dataNum; i++ {
		for j := 0; j < m.dataNum; j++ {
			rec.CovMat[blockKey(i, j)] = recordOf(m.covMat.Block(i, j))
		}
	}
	for i, h := range m.hList {
		rec.HList[strconv.Itoa(i)] = recordOf(h)
	}
	if len(m.zList) != 0 {
		rec.ZList = make(map[string]matrixRecord)
		for i, z := range m.zList {
			rec.ZList[strconv.Itoa(i)] = recordOf(z)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrStorage, path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: closing %s: %v", ErrStorage, path, cerr)
		}
	}()

	w := bufio.NewWriter(f)
	if err := gob.NewEncoder(w).Encode(rec); err != nil {
		return fmt.Errorf("%w: encoding params to %s: %v", ErrStorage, path, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("%w: flushing %s: %v", ErrStorage, path, err)
	}
	return nil
}

// Load restores fitted parameters from path, replacing the model's state.
// A document without projected results leaves the projected list empty.
func (m *Model) Load(path string) error {
	m.logger.Info("loading gcca params", zap.String("path", path))

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %v", ErrStorage, path, err)
	}
	defer f.Close()

	var rec paramsRecord
	if err := gob.NewDecoder(bufio.NewReader(f)).Decode(&rec); err != nil {
		return fmt.Errorf("%w: decoding %s: %v", ErrStorage, path, err)
	}
	if rec.DataNum <= 0 {
		return fmt.Errorf("%w: %s holds no fitted model (data_num=%d)", ErrStorage, path, rec.DataNum)
	}

	blocks := make([][]*mat.Dense, rec.DataNum)
	for i := 0; i < rec.DataNum; i++ {
		blocks[i] = make([]*mat.Dense, rec.DataNum)
		for j := 0; j < rec.DataNum; j++ {
			br, ok := rec.CovMat[blockKey(i, j)]
			if !ok {
				return fmt.Errorf("%w: %s is missing covariance block %s", ErrStorage, path, blockKey(i, j))
			}
			blocks[i][j], err = br.matrix()
			if err != nil {
				return fmt.Errorf("%w: covariance block %s in %s: %v", ErrStorage, blockKey(i, j), path, err)
			}
		}
	}
	covMat, err := newBlockMatrix(blocks)
	if err != nil {
		return fmt.Errorf("%w: covariance grid in %s: %v", ErrStorage, path, err)
	}

	hList := make([]*mat.Dense, rec.DataNum)
	for i := 0; i < rec.DataNum; i++ {
		hr, ok := rec.HList[strconv.Itoa(i)]
		if !ok {
			return fmt.Errorf("%w: %s is missing projection matrix %d", ErrStorage, path, i)
		}
		hList[i], err = hr.matrix()
		if err != nil {
			return fmt.Errorf("%w: projection matrix %d in %s: %v", ErrStorage, i, path, err)
		}
		if r, _ := hList[i].Dims(); r != covMat.Dim(i) {
			return fmt.Errorf("%w: projection matrix %d in %s has %d rows, covariance says %d features", ErrStorage, i, path, r, covMat.Dim(i))
		}
	}

	var zList []*mat.Dense
	if rec.ZList != nil {
		zList = make([]*mat.Dense, rec.DataNum)
		for i := 0; i < rec.DataNum; i++ {
			zr, ok := rec.ZList[strconv.Itoa(i)]
			if !ok {
				return fmt.Errorf("%w: %s is missing projected data set %d", ErrStorage, path, i)
			}
			zList[i], err = zr.matrix()
			if err != nil {
				return fmt.Errorf("%w: projected data set %d in %s: %v", ErrStorage, i, path, err)
			}
		}
	}

	m.NComponents = rec.NComponents
	m.RegParam = rec.RegParam
	m.dataNum = rec.DataNum
	m.covMat = covMat
	m.hList = hList
	m.eigVals = rec.EigVals
	m.zList = zList
	return nil
}

func blockKey(i, j int) string {
	return strconv.Itoa(i) + "_" + strconv.Itoa(j)
}
